package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/Veraticus/chargeback/internal/engine"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		Report: &model.Report{
			Period: "October-2026",
			Window: model.Window{
				Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC),
			},
			Entries: []model.ChargebackEntry{
				{Customer: "1001", ServiceRequestNo: "SR-1", Description: "Create the user id- Generic",
					MRC: decimal.RequireFromString("39.15"), EmailCount: 1, StartTime: "October-2026"},
				{Customer: "1002", ServiceRequestNo: "SR-2", Description: "Assign License - Copilot",
					MRC: decimal.RequireFromString("62"), EmailCount: 2, StartTime: "October-2026"},
			},
		},
		OutputPath: "/home/me/Documents/Chargeback_October_2026.xlsx",
		Loaded:     12,
		Filtered:   5,
		Written:    true,
		Notified:   true,
		Channels:   []string{"smtp", "slack"},
		Skipped: []model.Skip{
			{Row: 7, ServiceRequestNo: "SR-7", Description: "Power BI Pro License Assignment - Task", Reason: model.SkipMissingRate},
		},
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, sampleResult()))

	out := buf.String()
	for _, want := range []string{
		"Chargeback Report",
		"October-2026",
		"Sep 1, 2026 to Sep 30, 2026",
		"12 loaded, 5 after filters",
		"$101.15",
		"Report written to /home/me/Documents/Chargeback_October_2026.xlsx",
		"Sent via smtp, slack",
		"Service Request No.",
		"$39.15",
		"$62.00",
		"1 rows not billed",
		"row 7 (SR-7): missing_rate",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderSummary_DryRun(t *testing.T) {
	result := sampleResult()
	result.Written = false
	result.Notified = false
	result.Skipped = nil

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "Dry run, report would be written to")
	assert.NotContains(t, out, "Sent via")
	assert.NotContains(t, out, "not billed")
}

func TestRenderSummary_NoReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, nil))
	require.NoError(t, RenderSummary(&buf, &engine.Result{}))
	assert.Empty(t, buf.String())
}

func TestRenderRates(t *testing.T) {
	out := RenderRates(
		[]model.BillableAction{
			{Description: "Create the user id- Generic", RateKey: "Create the user id- Generic"},
			{Description: "Power BI Pro License Assignment - Task", RateKey: "Power BI Pro License Assignment - Task"},
		},
		model.RateTable{"Create the user id- Generic": decimal.RequireFromString("39.15")},
	)

	assert.Contains(t, out, "MRC per user")
	assert.Contains(t, out, "$39.15")
	assert.Contains(t, out, "missing")
}
