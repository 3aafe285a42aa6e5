package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"gocopula/domain/copula"
	"gocopula/domain/core"
	apperrors "gocopula/internal/errors"
	"gocopula/ports"
)

// ReportRepositoryImpl implements ports.ReportRepository for PostgreSQL.
// Key columns are flattened for querying; the full record set rides along as
// JSONB (NA values serialize as JSON null via the domain's NullableFloat).
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) *ReportRepositoryImpl {
	return &ReportRepositoryImpl{db: db}
}

var _ ports.ReportRepository = (*ReportRepositoryImpl)(nil)

// EnsureSchema creates the condition_reports table if it does not exist
func (r *ReportRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS condition_reports (
			condition_id TEXT PRIMARY KEY,
			run_id       TEXT NOT NULL,
			n            INTEGER NOT NULL,
			best_family  TEXT NOT NULL,
			report       JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_condition_reports_run ON condition_reports (run_id);
	`)
	if err != nil {
		return apperrors.Wrap(err, "failed to create condition_reports schema")
	}
	return nil
}

// Save upserts one condition's report
func (r *ReportRepositoryImpl) Save(ctx context.Context, runID core.RunID, report copula.ConditionReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode condition report")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO condition_reports (condition_id, run_id, n, best_family, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (condition_id) DO UPDATE
		SET run_id = EXCLUDED.run_id,
		    n = EXCLUDED.n,
		    best_family = EXCLUDED.best_family,
		    report = EXCLUDED.report,
		    created_at = EXCLUDED.created_at
	`, report.ConditionID.String(), runID.String(), report.N, report.Best.String(), payload, report.CreatedAt.Time())

	if err != nil {
		return apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}
	return nil
}

// GetByCondition retrieves one condition's report
func (r *ReportRepositoryImpl) GetByCondition(ctx context.Context, conditionID core.ConditionID) (*copula.ConditionReport, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT report FROM condition_reports WHERE condition_id = $1
	`, conditionID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("condition report")
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}

	var report copula.ConditionReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode condition report")
	}
	return &report, nil
}

// ListByRun retrieves every report persisted under one run
func (r *ReportRepositoryImpl) ListByRun(ctx context.Context, runID core.RunID) ([]copula.ConditionReport, error) {
	var payloads [][]byte
	err := r.db.SelectContext(ctx, &payloads, `
		SELECT report FROM condition_reports WHERE run_id = $1 ORDER BY condition_id
	`, runID.String())
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}

	reports := make([]copula.ConditionReport, 0, len(payloads))
	for _, payload := range payloads {
		var report copula.ConditionReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode condition report")
		}
		reports = append(reports, report)
	}
	return reports, nil
}
