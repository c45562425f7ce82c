package reports

import (
	"bytes"
	"html/template"
	"io"
	"net/url"
	"time"

	"cloudwarden/pkg/charts"
	"cloudwarden/pkg/findings"
)

const (
	BarChartTitle = "Finding Types Overview"
	PieChartTitle = "IAM Finding Distribution"
)

// TypeOption is one entry of the finding type selector.
type TypeOption struct {
	Type     string
	Count    int
	Selected bool
}

// DashboardView is everything the dashboard shows for one filter selection.
type DashboardView struct {
	Title       string
	GeneratedAt string

	// Static is set for HTML files written to disk, which have no server
	// behind them to apply filters.
	Static bool

	ReportTotal   int
	Total         int
	AffectedUsers int
	Counts        []findings.TypeCount
	Types         []TypeOption

	Columns  []string
	Rows     [][]string
	Findings []findings.Finding

	Renderer string
	BarChart template.HTML
	PieChart template.HTML

	ExportFileName string
	DownloadHref   template.URL
}

// BuildDashboardView filters report by selected and derives metrics, charts
// and table rows from the result.
func BuildDashboardView(title string, report *findings.Report, selected findings.TypeSet, renderer charts.Renderer) (DashboardView, error) {
	filtered := report.FilterByTypes(selected)
	counts := findings.CountByType(filtered)

	all := findings.CountByType(report.Findings())
	perType := make(map[string]int, len(all))
	for _, c := range all {
		perType[c.Type] = c.Count
	}

	types := report.Types()
	options := make([]TypeOption, 0, len(types))
	query := url.Values{"applied": {"1"}}
	for _, t := range types {
		sel := selected.Has(t)
		options = append(options, TypeOption{Type: t, Count: perType[t], Selected: sel})
		if sel {
			query.Add("type", t)
		}
	}

	columns := findings.Columns(report.Findings())
	rows := make([][]string, 0, len(filtered))
	for _, f := range filtered {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = f.Value(c)
		}
		rows = append(rows, row)
	}

	view := DashboardView{
		Title:          title,
		GeneratedAt:    time.Now().Format(time.RFC1123),
		ReportTotal:    report.Len(),
		Total:          len(filtered),
		AffectedUsers:  findings.DistinctUserCount(filtered),
		Counts:         counts,
		Types:          options,
		Columns:        columns,
		Rows:           rows,
		Findings:       filtered,
		Renderer:       renderer.Name(),
		ExportFileName: DefaultExportFileName,
		DownloadHref:   template.URL("download?" + query.Encode()),
	}

	var err error
	if view.BarChart, err = chartHTML(renderer.Bar, BarChartTitle, counts, renderer.Markup()); err != nil {
		return DashboardView{}, err
	}
	if view.PieChart, err = chartHTML(renderer.Pie, PieChartTitle, counts, renderer.Markup()); err != nil {
		return DashboardView{}, err
	}
	return view, nil
}

// DefaultExportFileName is the download name for the filtered JSON.
const DefaultExportFileName = "filtered_iam_findings.json"

func chartHTML(draw func(w io.Writer, title string, data []findings.TypeCount) error, title string, data []findings.TypeCount, markup bool) (template.HTML, error) {
	var buf bytes.Buffer
	if err := draw(&buf, title, data); err != nil {
		return "", err
	}
	if markup {
		return template.HTML(buf.String()), nil
	}
	return template.HTML(`<pre class="chart">` + template.HTMLEscapeString(buf.String()) + `</pre>`), nil
}

// ExportDataURI embeds the filtered export in a data URI, used as the
// download link of static HTML files.
func ExportDataURI(fs []findings.Finding) (template.URL, error) {
	data, err := findings.MarshalExport(fs)
	if err != nil {
		return "", err
	}
	return template.URL("data:application/json;charset=utf-8," + url.PathEscape(string(data))), nil
}
