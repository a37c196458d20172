// Package report writes the chargeback report workbook.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	// DefaultSheet is the worksheet holding the report rows.
	DefaultSheet = "Chargeback"

	minColumnWidth = 10.0
	maxColumnWidth = 60.0
)

// OutputPath returns the report location for a run at now:
// <dir>/Chargeback_<Month>_<Year>.xlsx. A positive year overrides now's year.
func OutputPath(dir string, now time.Time, year int) string {
	if year <= 0 {
		year = now.Year()
	}
	return filepath.Join(dir, fmt.Sprintf("Chargeback_%s_%d.xlsx", now.Month(), year))
}

// Writer serializes reports to xlsx.
type Writer struct {
	logger *slog.Logger
	sheet  string
}

// NewWriter creates a writer that puts the rows on the named sheet.
func NewWriter(sheet string, logger *slog.Logger) *Writer {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{sheet: sheet, logger: logger}
}

// Write saves report to path, replacing any existing file.
func (w *Writer) Write(ctx context.Context, report *model.Report, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return common.NewWriteError(fmt.Sprintf("cannot create %s", filepath.Dir(path)), err)
	}

	book := excelize.NewFile()
	defer func() {
		if closeErr := book.Close(); closeErr != nil {
			w.logger.Warn("Failed to close workbook", "error", closeErr)
		}
	}()

	if err := w.fill(book, report); err != nil {
		return common.NewWriteError("cannot build report workbook", err)
	}

	if err := book.SaveAs(path); err != nil {
		return common.NewWriteError(fmt.Sprintf("cannot save %s", path), err)
	}

	w.logger.Info("Report written", "path", path, "rows", len(report.Entries))
	return nil
}

func (w *Writer) fill(book *excelize.File, report *model.Report) error {
	if err := book.SetSheetName(book.GetSheetName(0), w.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(model.ReportColumns))
	for i, col := range model.ReportColumns {
		header[i] = col
	}
	if err := book.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rows := report.Rows()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := book.SetSheetRow(w.sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return w.format(book, rows)
}

func (w *Writer) format(book *excelize.File, rows [][]string) error {
	bold, err := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := book.SetRowStyle(w.sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := book.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, width := range columnWidths(rows) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := book.SetColWidth(w.sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	return nil
}

// columnWidths sizes each column to its longest value, clamped.
func columnWidths(rows [][]string) []float64 {
	widths := make([]float64, len(model.ReportColumns))
	for i, col := range model.ReportColumns {
		widths[i] = float64(utf8.RuneCountInString(col))
	}
	for _, row := range rows {
		for i, v := range row {
			if n := float64(utf8.RuneCountInString(v)); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i]+2, minColumnWidth), maxColumnWidth)
	}
	return widths
}
