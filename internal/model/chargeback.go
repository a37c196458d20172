package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReportColumns is the fixed column set of the chargeback report.
var ReportColumns = []string{"Customer", "Service Request No.", "Caller", "Description", "MRC", "Start Time"}

// ChargebackEntry is one billable work order.
type ChargebackEntry struct {
	MRC              decimal.Decimal
	Customer         string
	ServiceRequestNo string
	Caller           string
	Description      string
	StartTime        string // billing period label, stamped during aggregation
	EmailCount       int
}

// MRCLabel returns the charge formatted for the report, e.g. "$39.15".
func (e ChargebackEntry) MRCLabel() string {
	return FormatCurrency(e.MRC)
}

// Values returns the entry as a report row in ReportColumns order.
func (e ChargebackEntry) Values() []string {
	return []string{e.Customer, e.ServiceRequestNo, e.Caller, e.Description, e.MRCLabel(), e.StartTime}
}

// Report is the monthly chargeback report. It is built once per run and not
// modified after aggregation.
type Report struct {
	GeneratedAt time.Time
	Period      string
	Window      Window
	Entries     []ChargebackEntry
}

// Total sums the MRC of every entry.
func (r *Report) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Entries {
		total = total.Add(e.MRC)
	}
	return total
}

// Rows returns the report body as string rows in ReportColumns order.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, e.Values())
	}
	return rows
}

// CountByDescription returns the number of entries per billable action.
func (r *Report) CountByDescription() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Entries {
		counts[e.Description]++
	}
	return counts
}

// SkipReason explains why a candidate row was not billed.
type SkipReason string

const (
	// SkipNoRecipients means the solution text named no email address.
	SkipNoRecipients SkipReason = "no_recipients"
	// SkipMissingRate means the rate table has no entry for the action.
	SkipMissingRate SkipReason = "missing_rate"
)

// Skip records a row that matched a billable action but produced no charge.
type Skip struct {
	ServiceRequestNo string
	Description      string
	Reason           SkipReason
	Row              int
}

func (s Skip) String() string {
	return fmt.Sprintf("row %d (%s): %s", s.Row, s.ServiceRequestNo, s.Reason)
}
