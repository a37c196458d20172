package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BillableAction pairs the work-order description that identifies a
// self-service action with the rate table key used to price it.
type BillableAction struct {
	Description string
	RateKey     string
}

// Validate ensures the action can be matched and priced.
func (a BillableAction) Validate() error {
	if a.Description == "" {
		return fmt.Errorf("action description is required")
	}
	if a.RateKey == "" {
		return fmt.Errorf("action %q has no rate key", a.Description)
	}
	return nil
}

// RateTable maps a rate key to its per-user monthly recurring charge.
type RateTable map[string]decimal.Decimal

// Lookup returns the rate for key.
func (t RateTable) Lookup(key string) (decimal.Decimal, bool) {
	rate, ok := t[key]
	return rate, ok
}

// FormatCurrency renders an amount as dollars with two decimals and no
// thousands separators.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
