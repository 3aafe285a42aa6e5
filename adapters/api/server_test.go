package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocopula/adapters/rng"
	"gocopula/domain/copula"
	"gocopula/internal/analysis"
	"gocopula/internal/testkit"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := analysis.NewEngine(analysis.EngineConfig{
		Families: []copula.Family{copula.FamilyComonotonic},
		BaseSeed: 20240901,
	}, rng.NewProvider())
	require.NoError(t, err)
	return NewServer(engine, nil)
}

func postAnalyze(t *testing.T, server *Server, conditionID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/conditions/"+conditionID+"/analyze", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleAnalyze(t *testing.T) {
	server := newTestServer(t)
	x, y := testkit.LinearScores(testkit.NewRand(901), 60, 0.3)

	rec := postAnalyze(t, server, "grade-3-4:math", analyzeRequest{Prior: x, Current: y})
	require.Equal(t, http.StatusOK, rec.Code)

	var report copula.ConditionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "grade-3-4:math", report.ConditionID.String())
	assert.Equal(t, copula.FamilyComonotonic, report.Best)
	assert.Equal(t, 60, report.N)
}

func TestHandleAnalyzeMalformedBody(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/conditions/c1/analyze", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeInvalidInput(t *testing.T) {
	server := newTestServer(t)
	x, y := testkit.ConcordantScores(10) // below the minimum sample size

	rec := postAnalyze(t, server, "tiny", analyzeRequest{Prior: x, Current: y})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

func TestReportRouteAbsentWithoutRepository(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/conditions/c1/report", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, "report route is only mounted when persistence is wired")
}
