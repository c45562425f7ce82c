package reports

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"cloudwarden/pkg/charts"
	"cloudwarden/pkg/findings"
)

const maxCellWidth = 40

// PrintSummary writes the headline metrics and the per-type charts.
func PrintSummary(w io.Writer, view DashboardView, renderer charts.Renderer) error {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(view.Title))
	fmt.Fprintf(w, "%s %d (of %d)\n", color.HiBlueString("Total Findings:"), view.Total, view.ReportTotal)
	fmt.Fprintf(w, "%s %d\n\n", color.HiBlueString("Affected Users:"), view.AffectedUsers)

	if view.Total == 0 {
		fmt.Fprintln(w, color.YellowString("No findings match the selected finding types."))
		return nil
	}

	if err := renderer.Bar(w, BarChartTitle, view.Counts); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := renderer.Pie(w, PieChartTitle, view.Counts); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

// PrintFindingsTable writes the filtered findings as an aligned table.
func PrintFindingsTable(w io.Writer, view DashboardView) {
	if len(view.Rows) == 0 {
		return
	}

	widths := make([]int, len(view.Columns))
	for i, c := range view.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range view.Rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(truncate(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	// Header formatting
	header := make([]string, len(view.Columns))
	for i, c := range view.Columns {
		header[i] = color.HiBlueString(pad(c, widths[i]))
	}
	fmt.Fprintln(w, strings.Join(header, "  "))

	total := 0
	for _, wd := range widths {
		total += wd + 2
	}
	fmt.Fprintln(w, strings.Repeat("-", total))

	typeCol := indexOf(view.Columns, findings.TypeKey)
	for _, row := range view.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(truncate(cell), widths[i])
			if i == typeCol {
				cells[i] = color.New(color.FgYellow).Sprint(cells[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxCellWidth {
		return s
	}
	r := []rune(s)
	return string(r[:maxCellWidth-1]) + "…"
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
