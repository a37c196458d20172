package chargeback

import (
	"time"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/samber/lo"
)

// PeriodLabelLayout formats the billing period stamped in Start Time.
const PeriodLabelLayout = "January-2006"

// PeriodLabel returns the label of t's month, e.g. "September-2026".
func PeriodLabel(t time.Time) string {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).Format(PeriodLabelLayout)
}

// Aggregate concatenates the extractions in order and stamps every entry with
// period. It fails when no extraction produced an entry.
func Aggregate(extractions []Extraction, period string) (*model.Report, error) {
	entries := lo.FlatMap(extractions, func(x Extraction, _ int) []model.ChargebackEntry {
		return x.Entries
	})
	if len(entries) == 0 {
		return nil, common.NewAggregationError("no billable actions found for the period")
	}

	stamped := lo.Map(entries, func(e model.ChargebackEntry, _ int) model.ChargebackEntry {
		e.StartTime = period
		return e
	})

	return &model.Report{
		Period:  period,
		Entries: stamped,
	}, nil
}

// Skipped collects the skipped rows of every extraction.
func Skipped(extractions []Extraction) []model.Skip {
	return lo.FlatMap(extractions, func(x Extraction, _ int) []model.Skip {
		return x.Skipped
	})
}
