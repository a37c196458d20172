// Package filter narrows a WorkOrderTable to the rows eligible for billing.
package filter

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/chargeback/internal/model"
	"github.com/samber/lo"
)

// Filter is a named per-row predicate. Filters hold no state, so any order
// of application yields the same rows.
type Filter struct {
	Keep func(model.WorkOrder) bool
	Name string
}

// PreviousMonth returns the calendar month before now in now's location,
// from 00:00:00 on day 1 through 23:59:59 on the last day.
func PreviousMonth(now time.Time) model.Window {
	firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return model.Window{
		Start: firstOfCurrent.AddDate(0, -1, 0),
		End:   firstOfCurrent.Add(-time.Second),
	}
}

// ResolvedWithin keeps rows resolved inside w. Rows without a resolution
// time are dropped.
func ResolvedWithin(w model.Window) Filter {
	return Filter{
		Name: "date",
		Keep: func(wo model.WorkOrder) bool {
			return wo.ResolvedAt != nil && w.Contains(*wo.ResolvedAt)
		},
	}
}

// ClosureCodeIs keeps rows whose trimmed closure code equals code exactly.
func ClosureCodeIs(code string) Filter {
	return Filter{
		Name: "closure code",
		Keep: func(wo model.WorkOrder) bool {
			return strings.TrimSpace(wo.ClosureCode) == code
		},
	}
}

// ExcludeCustomer drops rows whose trimmed customer equals id.
func ExcludeCustomer(id string) Filter {
	return Filter{
		Name: "customer exclusion",
		Keep: func(wo model.WorkOrder) bool {
			return strings.TrimSpace(wo.Customer) != id
		},
	}
}

// Apply runs filters in order and logs the row count after each stage. The
// input table is not modified.
func Apply(logger *slog.Logger, table model.WorkOrderTable, filters ...Filter) model.WorkOrderTable {
	out := table
	for _, f := range filters {
		out = lo.Filter(out, func(wo model.WorkOrder, _ int) bool {
			return f.Keep(wo)
		})
		logger.Info("Rows after filter", "filter", f.Name, "rows", len(out))
	}
	if out == nil {
		out = model.WorkOrderTable{}
	}
	return out
}

// Standard returns the billing filter chain: resolved in the window, closed
// with closureCode, and not for excludedCustomer. An empty excludedCustomer
// disables the exclusion.
func Standard(w model.Window, closureCode, excludedCustomer string) []Filter {
	filters := []Filter{
		ResolvedWithin(w),
		ClosureCodeIs(closureCode),
	}
	if excludedCustomer != "" {
		filters = append(filters, ExcludeCustomer(excludedCustomer))
	}
	return filters
}
