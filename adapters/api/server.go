package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gocopula/domain/core"
	"gocopula/internal"
	"gocopula/internal/analysis"
	apperrors "gocopula/internal/errors"
	"gocopula/ports"
)

// Server exposes the per-condition analysis engine over HTTP. One POST per
// condition; persistence is optional and only active when a repository is
// wired in.
type Server struct {
	engine *analysis.Engine
	repo   ports.ReportRepository // may be nil
	runID  core.RunID
	logger *internal.Logger
}

// NewServer creates an HTTP server around the engine
func NewServer(engine *analysis.Engine, repo ports.ReportRepository) *Server {
	return &Server{
		engine: engine,
		repo:   repo,
		runID:  core.RunID(core.NewID()),
		logger: internal.DefaultLogger.Component("API"),
	}
}

// Router builds the chi route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/conditions/{conditionID}/analyze", s.handleAnalyze)
	if s.repo != nil {
		r.Get("/conditions/{conditionID}/report", s.handleGetReport)
	}
	return r
}

// analyzeRequest is the input contract: paired prior/current scores with
// missing values already removed upstream.
type analyzeRequest struct {
	Prior   []float64 `json:"prior"`
	Current []float64 `json:"current"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	conditionID, err := core.ParseConditionID(chi.URLParam(r, "conditionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.InvalidInput("malformed request body"))
		return
	}

	report, err := s.engine.AnalyzeCondition(r.Context(), conditionID, req.Prior, req.Current)
	if err != nil {
		s.logger.Warn("condition %s failed: %v", conditionID, err)
		writeError(w, statusFor(err), err)
		return
	}

	if s.repo != nil {
		if err := s.repo.Save(r.Context(), s.runID, *report); err != nil {
			// Persistence failure degrades to a warning; the caller still
			// gets the computed report.
			s.logger.Warn("condition %s: persist failed: %v", conditionID, err)
		}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	conditionID, err := core.ParseConditionID(chi.URLParam(r, "conditionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.repo.GetByCondition(r.Context(), conditionID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// statusFor maps domain error codes onto HTTP statuses
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.CodeInvalidInput, apperrors.CodeConfigInvalid:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeAllFitsFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}
