package model

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		amount decimal.Decimal
	}{
		{name: "two decimals kept", amount: decimal.RequireFromString("39.15"), want: "$39.15"},
		{name: "whole dollars padded", amount: decimal.NewFromInt(31), want: "$31.00"},
		{name: "rounded half up", amount: decimal.RequireFromString("12.945"), want: "$12.95"},
		{name: "no thousands separator", amount: decimal.RequireFromString("12345.6"), want: "$12345.60"},
		{name: "zero", amount: decimal.Zero, want: "$0.00"},
	}

	pattern := regexp.MustCompile(`^\$\d+\.\d{2}$`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCurrency(tt.amount)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, pattern, got)
		})
	}
}

func TestRateTable_Lookup(t *testing.T) {
	rates := RateTable{
		"Create the user id- Generic": decimal.RequireFromString("39.15"),
		"Assign License - Copilot":    decimal.RequireFromString("31"),
	}

	rate, ok := rates.Lookup("Create the user id- Generic")
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("39.15")))

	_, ok = rates.Lookup("create the user id- generic")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestBillableAction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		action  BillableAction
		wantErr bool
	}{
		{
			name:   "valid",
			action: BillableAction{Description: "Assign License - Copilot", RateKey: "Assign License - Copilot"},
		},
		{
			name:    "missing description",
			action:  BillableAction{RateKey: "x"},
			wantErr: true,
			errMsg:  "action description is required",
		},
		{
			name:    "missing rate key",
			action:  BillableAction{Description: "Assign License - Copilot"},
			wantErr: true,
			errMsg:  "has no rate key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
