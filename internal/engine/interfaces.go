package engine

import (
	"context"

	"github.com/Veraticus/chargeback/internal/model"
)

// Loader defines the contract for reading the work-order export.
type Loader interface {
	Load(ctx context.Context, path string) (model.WorkOrderTable, error)
}

// ReportWriter defines the contract for persisting the report.
type ReportWriter interface {
	Write(ctx context.Context, report *model.Report, path string) error
}

// Progress receives stage updates while a run is in flight.
type Progress interface {
	Start(stages int)
	Step(description string)
	Done()
}

type noopProgress struct{}

func (noopProgress) Start(int)   {}
func (noopProgress) Step(string) {}
func (noopProgress) Done()       {}
