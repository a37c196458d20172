package chargeback

import (
	"log/slog"

	"github.com/Veraticus/chargeback/internal/model"
	"github.com/shopspring/decimal"
)

// Extraction is the result of pricing one billable action.
type Extraction struct {
	Action  model.BillableAction
	Entries []model.ChargebackEntry
	Skipped []model.Skip
}

// Extractor prices work orders against a rate table.
type Extractor struct {
	rates  model.RateTable
	logger *slog.Logger
}

// NewExtractor creates an extractor using rates.
func NewExtractor(rates model.RateTable, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{rates: rates, logger: logger}
}

// WithLogger returns a copy of the extractor that logs to logger.
func (x *Extractor) WithLogger(logger *slog.Logger) *Extractor {
	return &Extractor{rates: x.rates, logger: logger}
}

// Extract scans table for rows of the given action. A row is billed once per
// distinct email address in its solution text. Rows naming no address, or
// whose action has no rate, are returned in Skipped.
func (x *Extractor) Extract(table model.WorkOrderTable, action model.BillableAction) Extraction {
	result := Extraction{Action: action}

	for _, wo := range table {
		if wo.Description != action.Description || wo.Solution == "" {
			continue
		}

		emails := ExtractEmails(wo.Solution)
		if len(emails) == 0 {
			result.Skipped = append(result.Skipped, skip(wo, model.SkipNoRecipients))
			continue
		}

		rate, ok := x.rates.Lookup(action.RateKey)
		if !ok {
			x.logger.Warn("MRC value not found, skipping row",
				"rate_key", action.RateKey,
				"row", wo.Row)
			result.Skipped = append(result.Skipped, skip(wo, model.SkipMissingRate))
			continue
		}

		result.Entries = append(result.Entries, model.ChargebackEntry{
			Customer:         wo.Customer,
			ServiceRequestNo: wo.ServiceRequestNo,
			Caller:           wo.Caller,
			Description:      wo.Description,
			MRC:              rate.Mul(decimal.NewFromInt(int64(len(emails)))),
			EmailCount:       len(emails),
		})
	}

	x.logger.Info("Processed '"+action.Description+"'",
		"rows", len(result.Entries),
		"skipped", len(result.Skipped))
	return result
}

// ExtractAll runs Extract for each action in order.
func (x *Extractor) ExtractAll(table model.WorkOrderTable, actions []model.BillableAction) []Extraction {
	out := make([]Extraction, 0, len(actions))
	for _, action := range actions {
		out = append(out, x.Extract(table, action))
	}
	return out
}

func skip(wo model.WorkOrder, reason model.SkipReason) model.Skip {
	return model.Skip{
		Row:              wo.Row,
		ServiceRequestNo: wo.ServiceRequestNo,
		Description:      wo.Description,
		Reason:           reason,
	}
}
