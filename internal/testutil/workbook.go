// Package testutil builds work-order export workbooks for tests.
//
// Example:
//
//	path := testutil.NewWorkbookBuilder(t).
//		WithRow(testutil.Row{Customer: "1001", Description: "Create the user id- Generic", ...}).
//		Save()
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// DefaultHeader is the header row of a typical ITSM export.
var DefaultHeader = []string{
	"Service Request No.",
	"Customer",
	"Caller",
	"Description",
	"Closure Code",
	"Actual Resolution Time",
	"Solution",
}

// Row is one work order as it appears in the export. Resolved may be a
// time.Time (written as an Excel date), a string, or nil.
type Row struct {
	Resolved         any
	ServiceRequestNo string
	Customer         string
	Caller           string
	Description      string
	ClosureCode      string
	Solution         string
}

func (r Row) cells() []any {
	return []any{r.ServiceRequestNo, r.Customer, r.Caller, r.Description, r.ClosureCode, r.Resolved, r.Solution}
}

// WorkbookBuilder assembles an xlsx file in the test's temp directory.
type WorkbookBuilder struct {
	t        testing.TB
	sheet    string
	filename string
	header   []string
	rows     [][]any
	extra    []string
}

// NewWorkbookBuilder starts a workbook with the "WO Report" sheet and the
// default header.
func NewWorkbookBuilder(t testing.TB) *WorkbookBuilder {
	t.Helper()
	return &WorkbookBuilder{
		t:        t,
		sheet:    "WO Report",
		filename: "WO Report.xlsx",
		header:   DefaultHeader,
	}
}

// WithSheet renames the data sheet.
func (b *WorkbookBuilder) WithSheet(name string) *WorkbookBuilder {
	b.sheet = name
	return b
}

// WithFilename sets the file name inside the temp directory.
func (b *WorkbookBuilder) WithFilename(name string) *WorkbookBuilder {
	b.filename = name
	return b
}

// WithHeader replaces the header row. Rows added with WithRawRow must match it.
func (b *WorkbookBuilder) WithHeader(header ...string) *WorkbookBuilder {
	b.header = header
	return b
}

// WithExtraSheet adds an unrelated sheet before the data sheet.
func (b *WorkbookBuilder) WithExtraSheet(name string) *WorkbookBuilder {
	b.extra = append(b.extra, name)
	return b
}

// WithRow appends a work order in default header order.
func (b *WorkbookBuilder) WithRow(r Row) *WorkbookBuilder {
	b.rows = append(b.rows, r.cells())
	return b
}

// WithRows appends several work orders.
func (b *WorkbookBuilder) WithRows(rows ...Row) *WorkbookBuilder {
	for _, r := range rows {
		b.WithRow(r)
	}
	return b
}

// WithRawRow appends cells as given.
func (b *WorkbookBuilder) WithRawRow(cells ...any) *WorkbookBuilder {
	b.rows = append(b.rows, cells)
	return b
}

// Save writes the workbook and returns its path.
func (b *WorkbookBuilder) Save() string {
	b.t.Helper()
	return b.SaveTo(filepath.Join(b.t.TempDir(), b.filename))
}

// SaveTo writes the workbook to path.
func (b *WorkbookBuilder) SaveTo(path string) string {
	b.t.Helper()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	for _, name := range b.extra {
		if _, err := f.NewSheet(name); err != nil {
			b.t.Fatalf("failed to add sheet %q: %v", name, err)
		}
	}
	if err := f.SetSheetName("Sheet1", b.sheet); err != nil {
		b.t.Fatalf("failed to name sheet: %v", err)
	}

	header := make([]any, len(b.header))
	for i, h := range b.header {
		header[i] = h
	}
	if err := f.SetSheetRow(b.sheet, "A1", &header); err != nil {
		b.t.Fatalf("failed to write header: %v", err)
	}

	for i, row := range b.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			b.t.Fatalf("bad cell reference: %v", err)
		}
		values := row
		if err := f.SetSheetRow(b.sheet, cell, &values); err != nil {
			b.t.Fatalf("failed to write row %d: %v", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		b.t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// ReadSheet returns every row of sheet in the workbook at path.
func ReadSheet(t testing.TB, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("failed to read sheet %q: %v", sheet, err)
	}
	return rows
}
