package reports

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudwarden/pkg/charts"
	"cloudwarden/pkg/findings"
)

const testReport = `[
  {"type": "OverprivilegedUser", "user": "alice", "resource": "arn:aws:iam::1:user/alice"},
  {"type": "MFADisabled", "user": "bob"},
  {"type": "OverprivilegedUser", "user": "carol", "resource": "arn:aws:iam::1:role/<admin>"}
]`

func loadTestReport(t *testing.T) *findings.Report {
	t.Helper()
	r, err := findings.Load(strings.NewReader(testReport))
	require.NoError(t, err)
	return r
}

func newRenderer(t *testing.T, kind string) charts.Renderer {
	t.Helper()
	r, err := charts.New(kind)
	require.NoError(t, err)
	return r
}

func TestValidateEmbeddedTemplates(t *testing.T) {
	assert.NoError(t, ValidateEmbeddedTemplates())
}

func TestGenerateHTMLReport(t *testing.T) {
	report := loadTestReport(t)
	title := "Test IAM Report"
	view, err := BuildDashboardView(title, report, report.DistinctTypes(), newRenderer(t, charts.KindSVG))
	require.NoError(t, err)

	outputPath := filepath.Join(t.TempDir(), "test-report.html")
	require.NoError(t, GenerateHTMLReport(view, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, title)
	assert.Contains(t, contentStr, "OverprivilegedUser")
	assert.Contains(t, contentStr, "MFADisabled")
	assert.Contains(t, contentStr, "<html>")
	assert.Contains(t, contentStr, "</html>")
	assert.Contains(t, contentStr, "<svg")
	assert.Contains(t, contentStr, `href="data:application/json`)
	assert.Contains(t, contentStr, `download="filtered_iam_findings.json"`)
	// static files have no filter form
	assert.NotContains(t, contentStr, `<form`)
	// values from the report are escaped
	assert.Contains(t, contentStr, "role/&lt;admin&gt;")
}

func TestGenerateHTMLReportWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	report := loadTestReport(t)
	view, err := BuildDashboardView("t", report, report.DistinctTypes(), newRenderer(t, charts.KindNone))
	require.NoError(t, err)

	assert.Error(t, GenerateHTMLReport(view, "/dev/full"))
	assert.Error(t, GenerateHTMLReport(view, filepath.Join(t.TempDir(), "missing", "r.html")))
}

func TestRenderHTMLServerView(t *testing.T) {
	report := loadTestReport(t)
	view, err := BuildDashboardView("Dashboard", report, findings.NewTypeSet("MFADisabled"), newRenderer(t, charts.KindText))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, view))
	out := buf.String()

	assert.Contains(t, out, `<form`)
	assert.Contains(t, out, `value="MFADisabled" checked`)
	assert.NotContains(t, out, `value="OverprivilegedUser" checked`)
	assert.Contains(t, out, `<div class="value" id="total-findings">1</div>`)
	assert.Contains(t, out, `<div class="value" id="affected-users">1</div>`)
	assert.Contains(t, out, `<pre class="chart">`)
	assert.Contains(t, out, `href="download?applied=1&amp;type=MFADisabled"`)
}

func TestRenderHTMLEmptySelection(t *testing.T) {
	report := loadTestReport(t)
	view, err := BuildDashboardView("Dashboard", report, findings.NewTypeSet(), newRenderer(t, charts.KindSVG))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, view))

	assert.Contains(t, buf.String(), "No findings match the selected finding types.")
	assert.NotContains(t, buf.String(), `id="findings"`)
}

func TestRenderEmptyHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderEmptyHTML(&buf, "Empty Report", "No findings in report."))

	assert.Contains(t, buf.String(), "Empty Report")
	assert.Contains(t, buf.String(), `<div class="warning">No findings in report.</div>`)
	assert.NotContains(t, buf.String(), "Total Findings")
}
