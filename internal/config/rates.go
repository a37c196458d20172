package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/chargeback/internal/model"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a rate as written in the config file. Both "$39.15" and
// 17.39 are accepted; thousands separators are ignored.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q cannot be negative", raw)
	}
	return amount, nil
}

// BuildRateTable parses every configured rate into a RateTable.
func BuildRateTable(rates []RateFile) (model.RateTable, error) {
	table := make(model.RateTable, len(rates))
	for _, r := range rates {
		if r.Description == "" {
			return nil, fmt.Errorf("rate entry without description")
		}
		if _, dup := table[r.Description]; dup {
			return nil, fmt.Errorf("duplicate rate for %q", r.Description)
		}
		amount, err := ParseAmount(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("rate for %q: %w", r.Description, err)
		}
		table[r.Description] = amount
	}
	return table, nil
}

// BuildActions converts configured actions, defaulting the rate key to the
// description.
func BuildActions(actions []ActionFile) ([]model.BillableAction, error) {
	out := make([]model.BillableAction, 0, len(actions))
	for _, a := range actions {
		action := model.BillableAction{
			Description: a.Description,
			RateKey:     a.RateKey,
		}
		if action.RateKey == "" {
			action.RateKey = action.Description
		}
		if err := action.Validate(); err != nil {
			return nil, err
		}
		out = append(out, action)
	}
	return out, nil
}
