// Package workorder reads the ITSM work-order export into a WorkOrderTable.
package workorder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// Column headers of the export.
const (
	ColumnCustomer         = "Customer"
	ColumnServiceRequestNo = "Service Request No."
	ColumnCaller           = "Caller"
	ColumnDescription      = "Description"
	ColumnClosureCode      = "Closure Code"
	ColumnSolution         = "Solution"
	ColumnResolutionTime   = "Actual Resolution Time"
)

// RequiredColumns must be present in the header row.
var RequiredColumns = []string{
	ColumnClosureCode,
	ColumnCustomer,
	ColumnResolutionTime,
	ColumnDescription,
	ColumnSolution,
}

// optionalColumns are copied into the report when present.
var optionalColumns = []string{ColumnServiceRequestNo, ColumnCaller}

// timestampLayouts are the export's own text layouts. They are tried before
// dateparse so that day-first month names and US dates resolve the same way
// on every run.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"02-Jan-2006 15:04:05",
	"2-Jan-2006 15:04",
	"2-Jan-2006 3:04 PM",
	"2-Jan-2006",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
}

// minSerialDate is the Excel serial of 1970-01-01. Smaller numbers, such as
// a bare year typed as text, are not dates.
const minSerialDate = 25569

// Loader reads work orders from an xlsx workbook.
type Loader struct {
	location *time.Location
	logger   *slog.Logger
	sheet    string
}

// NewLoader creates a loader for the named sheet. Resolution times without a
// zone are interpreted in loc.
func NewLoader(sheet string, loc *time.Location, logger *slog.Logger) *Loader {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		sheet:    sheet,
		location: loc,
		logger:   logger,
	}
}

// Load opens the workbook at path and returns its work orders.
func (l *Loader) Load(ctx context.Context, path string) (model.WorkOrderTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewLoadError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn("Failed to close input file", "path", path, "error", closeErr)
		}
	}()

	table, err := l.Read(f)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Data loaded", "path", path, "rows", table.Len())
	return table, nil
}

// Read parses a workbook from r.
func (l *Loader) Read(r io.Reader) (model.WorkOrderTable, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, common.NewLoadError("input is not a readable xlsx workbook", err)
	}
	defer func() {
		_ = book.Close()
	}()

	if idx, idxErr := book.GetSheetIndex(l.sheet); idxErr != nil || idx < 0 {
		return nil, common.NewLoadError(
			fmt.Sprintf("sheet %q not found (sheets: %s)", l.sheet, strings.Join(book.GetSheetList(), ", ")), nil)
	}

	rows, err := book.GetRows(l.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, common.NewLoadError(fmt.Sprintf("cannot read sheet %q", l.sheet), err)
	}

	headerIdx := firstNonEmptyRow(rows)
	if headerIdx < 0 {
		return nil, common.NewLoadError(fmt.Sprintf("sheet %q is empty", l.sheet), nil)
	}

	cols, err := l.mapColumns(rows[headerIdx])
	if err != nil {
		return nil, err
	}

	table := make(model.WorkOrderTable, 0, len(rows)-headerIdx-1)
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		table = append(table, l.parseRow(row, cols, i+1))
	}

	return table, nil
}

// columnIndex maps header names to zero-based column positions; -1 marks an
// absent optional column.
type columnIndex map[string]int

func (l *Loader) mapColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex)
	for i, name := range header {
		name = strings.TrimSpace(name)
		for _, want := range append(append([]string(nil), RequiredColumns...), optionalColumns...) {
			if _, seen := cols[want]; !seen && strings.EqualFold(name, want) {
				cols[want] = i
			}
		}
	}

	var missing []string
	for _, want := range RequiredColumns {
		if _, ok := cols[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, common.NewLoadError(
			fmt.Sprintf("sheet %q is missing columns: %s", l.sheet, strings.Join(missing, ", ")), nil)
	}

	for _, opt := range optionalColumns {
		if _, ok := cols[opt]; !ok {
			l.logger.Warn("Optional column not found, values will be empty", "column", opt)
			cols[opt] = -1
		}
	}

	return cols, nil
}

func (l *Loader) parseRow(row []string, cols columnIndex, rowNum int) model.WorkOrder {
	cell := func(name string) string {
		i := cols[name]
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	return model.WorkOrder{
		Row:              rowNum,
		Customer:         strings.TrimSpace(cell(ColumnCustomer)),
		ServiceRequestNo: cell(ColumnServiceRequestNo),
		Caller:           cell(ColumnCaller),
		Description:      cell(ColumnDescription),
		ClosureCode:      strings.TrimSpace(cell(ColumnClosureCode)),
		Solution:         cell(ColumnSolution),
		ResolvedAt:       ParseTimestamp(cell(ColumnResolutionTime), l.location),
	}
}

// ParseTimestamp interprets an Excel serial date or a text timestamp in loc.
// Zone-less text is read in loc. It returns nil for anything else.
func ParseTimestamp(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < minSerialDate {
			return nil
		}
		t, convErr := excelize.ExcelDateToTime(serial, false)
		if convErr != nil {
			return nil
		}
		t = t.Round(time.Second)
		local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
		return &local
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return &t
		}
	}

	if t, err := dateparse.ParseIn(raw, loc); err == nil {
		return &t
	}

	return nil
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		if !isBlank(row) {
			return i
		}
	}
	return -1
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
