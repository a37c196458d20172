package chargeback

import (
	"testing"
	"time"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "October-2026", PeriodLabel(time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "January-2027", PeriodLabel(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAggregate(t *testing.T) {
	extractions := []Extraction{
		{
			Action: model.BillableAction{Description: "A", RateKey: "A"},
			Entries: []model.ChargebackEntry{
				{Customer: "1", Description: "A", MRC: decimal.RequireFromString("1.50"), EmailCount: 1},
			},
			Skipped: []model.Skip{{Row: 9, Reason: model.SkipMissingRate}},
		},
		{Action: model.BillableAction{Description: "B", RateKey: "B"}},
		{
			Action: model.BillableAction{Description: "C", RateKey: "C"},
			Entries: []model.ChargebackEntry{
				{Customer: "2", Description: "C", MRC: decimal.RequireFromString("2.25"), EmailCount: 1},
				{Customer: "3", Description: "C", MRC: decimal.RequireFromString("4.50"), EmailCount: 2},
			},
		},
	}

	report, err := Aggregate(extractions, "October-2026")
	require.NoError(t, err)

	require.Len(t, report.Entries, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{report.Entries[0].Customer, report.Entries[1].Customer, report.Entries[2].Customer})
	for _, e := range report.Entries {
		assert.Equal(t, "October-2026", e.StartTime)
	}
	assert.Equal(t, "October-2026", report.Period)
	assert.Equal(t, "$8.25", model.FormatCurrency(report.Total()))

	assert.Empty(t, extractions[0].Entries[0].StartTime, "extractions are not modified")
	assert.Len(t, Skipped(extractions), 1)
}

func TestAggregate_NoEntries(t *testing.T) {
	extractions := []Extraction{
		{Action: model.BillableAction{Description: "A", RateKey: "A"}, Skipped: []model.Skip{{Row: 2}}},
		{Action: model.BillableAction{Description: "B", RateKey: "B"}},
	}

	report, err := Aggregate(extractions, "October-2026")
	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAggregation)

	_, err = Aggregate(nil, "October-2026")
	assert.ErrorIs(t, err, common.ErrAggregation)
}
