package ports

import (
	"context"

	"gocopula/domain/copula"
	"gocopula/domain/core"
)

// ReportRepository is the output contract toward the reporting collaborator:
// one record set per condition, persisted after the engine finishes.
type ReportRepository interface {
	Save(ctx context.Context, runID core.RunID, report copula.ConditionReport) error
	GetByCondition(ctx context.Context, conditionID core.ConditionID) (*copula.ConditionReport, error)
	ListByRun(ctx context.Context, runID core.RunID) ([]copula.ConditionReport, error)
}
