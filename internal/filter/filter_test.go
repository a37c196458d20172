package filter

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, minute, second int) *time.Time {
	t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	return &t
}

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
		name      string
	}{
		{
			name:      "mid month",
			now:       time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC),
			wantStart: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "january wraps to december",
			now:       time.Date(2027, 1, 3, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "leap february",
			now:       time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2028, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "last second of month",
			now:       time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
			wantStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := PreviousMonth(tt.now)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
		})
	}
}

func TestPreviousMonth_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	w := PreviousMonth(time.Date(2026, 10, 1, 1, 0, 0, 0, loc))

	assert.Equal(t, loc, w.Start.Location())
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, loc), w.Start)
}

func TestResolvedWithin(t *testing.T) {
	w := PreviousMonth(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	keep := ResolvedWithin(w).Keep

	tests := []struct {
		resolved *time.Time
		name     string
		want     bool
	}{
		{name: "first instant", resolved: at(2026, 9, 1, 0, 0, 0), want: true},
		{name: "last second", resolved: at(2026, 9, 30, 23, 59, 59), want: true},
		{name: "mid month", resolved: at(2026, 9, 15, 12, 0, 0), want: true},
		{name: "one second early", resolved: at(2026, 8, 31, 23, 59, 59), want: false},
		{name: "current month", resolved: at(2026, 10, 1, 0, 0, 0), want: false},
		{name: "absent timestamp", resolved: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keep(model.WorkOrder{ResolvedAt: tt.resolved}))
		})
	}
}

func TestClosureCodeIs(t *testing.T) {
	keep := ClosureCodeIs("Request fulfilled successfully").Keep

	assert.True(t, keep(model.WorkOrder{ClosureCode: "Request fulfilled successfully"}))
	assert.True(t, keep(model.WorkOrder{ClosureCode: "  Request fulfilled successfully "}))
	assert.False(t, keep(model.WorkOrder{ClosureCode: "request fulfilled successfully"}), "match is case-sensitive")
	assert.False(t, keep(model.WorkOrder{ClosureCode: "Request fulfilled"}))
	assert.False(t, keep(model.WorkOrder{}))
}

func TestExcludeCustomer(t *testing.T) {
	keep := ExcludeCustomer("2122").Keep

	assert.False(t, keep(model.WorkOrder{Customer: "2122"}))
	assert.False(t, keep(model.WorkOrder{Customer: " 2122 "}))
	assert.True(t, keep(model.WorkOrder{Customer: "21220"}))
	assert.True(t, keep(model.WorkOrder{Customer: ""}))
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	table := model.WorkOrderTable{
		{Customer: "1001", ClosureCode: "Request fulfilled successfully", ResolvedAt: at(2026, 9, 2, 0, 0, 0)},
		{Customer: "2122", ClosureCode: "Request fulfilled successfully", ResolvedAt: at(2026, 9, 2, 0, 0, 0)},
		{Customer: "1003", ClosureCode: "Cancelled", ResolvedAt: at(2026, 9, 2, 0, 0, 0)},
	}
	snapshot := append(model.WorkOrderTable(nil), table...)

	w := PreviousMonth(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	out := Apply(common.DiscardLogger(), table, Standard(w, "Request fulfilled successfully", "2122")...)

	require.Len(t, out, 1)
	assert.Equal(t, "1001", out[0].Customer)
	assert.Equal(t, snapshot, table)
}

func TestApply_NoRowsYieldsEmptyTable(t *testing.T) {
	out := Apply(common.DiscardLogger(), nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestStandard_EmptyExclusionDisablesFilter(t *testing.T) {
	w := PreviousMonth(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	assert.Len(t, Standard(w, "x", "2122"), 3)
	assert.Len(t, Standard(w, "x", ""), 2)
}

// randomTable builds rows spread over three months with a mix of customers,
// closure codes and missing timestamps.
func randomTable(r *rand.Rand, n int) model.WorkOrderTable {
	customers := []string{"1001", "2122", " 2122", "3003", ""}
	codes := []string{"Request fulfilled successfully", "Cancelled", " Request fulfilled successfully "}
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	table := make(model.WorkOrderTable, 0, n)
	for i := 0; i < n; i++ {
		wo := model.WorkOrder{
			Row:         i + 2,
			Customer:    customers[r.Intn(len(customers))],
			ClosureCode: codes[r.Intn(len(codes))],
			Description: fmt.Sprintf("action-%d", r.Intn(3)),
		}
		if r.Intn(10) > 0 {
			ts := base.Add(time.Duration(r.Int63n(int64(92 * 24 * time.Hour))))
			wo.ResolvedAt = &ts
		}
		table = append(table, wo)
	}
	return table
}

func TestFilters_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	w := PreviousMonth(now)
	logger := common.DiscardLogger()

	for iter := 0; iter < 50; iter++ {
		table := randomTable(r, 1+r.Intn(200))

		dated := Apply(logger, table, ResolvedWithin(w))
		assert.LessOrEqual(t, len(dated), len(table))
		for _, wo := range dated {
			require.NotNil(t, wo.ResolvedAt, "absent timestamps are never retained")
			assert.False(t, wo.ResolvedAt.Before(w.Start))
			assert.False(t, wo.ResolvedAt.After(w.End))
		}

		excluded := Apply(logger, table, ExcludeCustomer("2122"))
		for _, wo := range excluded {
			assert.NotEqual(t, "2122", wo.Customer)
			assert.NotEqual(t, " 2122", wo.Customer)
		}

		chain := Standard(w, "Request fulfilled successfully", "2122")
		forward := Apply(logger, table, chain...)
		reversed := Apply(logger, table, chain[2], chain[1], chain[0])
		assert.Equal(t, forward, reversed, "filters commute")
	}
}
