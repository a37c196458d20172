package model

import "time"

// WorkOrder is a single row of the ITSM work-order export.
type WorkOrder struct {
	ResolvedAt       *time.Time // nil when the export had no parseable resolution time
	Customer         string
	ServiceRequestNo string
	Caller           string
	Description      string
	ClosureCode      string
	Solution         string
	Row              int // 1-based sheet row, for log messages
}

// WorkOrderTable is an ordered set of work orders. Pipeline stages never
// modify a table in place; each stage returns a new one.
type WorkOrderTable []WorkOrder

// Len returns the number of rows in the table.
func (t WorkOrderTable) Len() int {
	return len(t)
}

// Window is a closed time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts lies inside the window, both ends inclusive.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}
