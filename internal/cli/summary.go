package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Veraticus/chargeback/internal/engine"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderSummary writes the run summary box, the report table and any skipped
// rows to w.
func RenderSummary(w io.Writer, result *engine.Result) error {
	if result == nil || result.Report == nil {
		return nil
	}
	rep := result.Report

	var b strings.Builder
	fmt.Fprintf(&b, "Period:    %s\n", rep.Period)
	fmt.Fprintf(&b, "Window:    %s to %s\n",
		rep.Window.Start.Format("Jan 2, 2006"), rep.Window.End.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "Rows:      %d loaded, %d after filters\n", result.Loaded, result.Filtered)
	fmt.Fprintf(&b, "Entries:   %d\n", len(rep.Entries))
	fmt.Fprintf(&b, "Total MRC: %s\n", BoldStyle.Render(model.FormatCurrency(rep.Total())))

	switch {
	case result.Written:
		b.WriteString(FormatSuccess("Report written to " + result.OutputPath))
	default:
		b.WriteString(FormatInfo("Dry run, report would be written to " + result.OutputPath))
	}
	if result.Notified {
		b.WriteString("\n" + SuccessStyle.Render(MailIcon+" Sent via "+strings.Join(result.Channels, ", ")))
	}

	out := []string{
		RenderBox("Chargeback Report", b.String()),
		ReportTable(rep),
		countsByAction(rep),
	}
	if len(result.Skipped) > 0 {
		out = append(out, RenderSkipped(result.Skipped))
	}

	_, err := fmt.Fprintln(w, strings.Join(out, "\n\n"))
	return err
}

// ReportTable renders the report entries as a table.
func ReportTable(rep *model.Report) string {
	return newTable(model.ReportColumns, rep.Rows()).String()
}

func countsByAction(rep *model.Report) string {
	counts := rep.CountByDescription()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("%d", counts[name])})
	}
	return newTable([]string{"Action", "Entries"}, rows).String()
}

// RenderSkipped lists the rows that matched an action but were not billed.
func RenderSkipped(skipped []model.Skip) string {
	lines := make([]string, 0, len(skipped)+1)
	lines = append(lines, FormatWarning(fmt.Sprintf("%d rows not billed:", len(skipped))))
	for _, s := range skipped {
		lines = append(lines, SubtleStyle.Render("  "+s.String()+" "+s.Description))
	}
	return strings.Join(lines, "\n")
}

// RenderRates lists each billable action with its rate, or "missing".
func RenderRates(actions []model.BillableAction, rates model.RateTable) string {
	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		rate := ErrorStyle.Render("missing")
		if r, ok := rates.Lookup(a.RateKey); ok {
			rate = model.FormatCurrency(r)
		}
		rows = append(rows, []string{a.Description, rate})
	}
	return newTable([]string{"Action", "MRC per user"}, rows).String()
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}
