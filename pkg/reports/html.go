// Package reports turns an IAM audit report into dashboard views and
// renders them as HTML pages or terminal summaries.
package reports

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

//go:embed templates/index.html
var templatesFS embed.FS

// ValidateEmbeddedTemplates checks the template set was embedded and parses.
func ValidateEmbeddedTemplates() error {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read embedded templates root: %w", err)
	}

	if len(entries) == 0 {
		return fmt.Errorf("no embedded templates found (go:embed likely misconfigured)")
	}

	found := false
	for _, e := range entries {
		if !e.IsDir() && e.Name() == "index.html" {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("index.html not found in embedded templates")
	}

	_, err = loadTemplate()
	return err
}

// loadTemplate parses the embedded dashboard template once.
var loadTemplate = sync.OnceValues(func() (*template.Template, error) {
	tplBytes, err := templatesFS.ReadFile("templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	tpl, err := template.New("report").Funcs(template.FuncMap{
		// Percent helper used for the share column.
		"pct": func(part, total int) string {
			if total <= 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", float64(part)/float64(total)*100.0)
		},
		"lower": strings.ToLower,
	}).Parse(string(tplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return tpl, nil
})

type page struct {
	DashboardView
	Empty   bool
	Warning string
}

// RenderHTML writes the dashboard page for view.
func RenderHTML(w io.Writer, view DashboardView) error {
	tpl, err := loadTemplate()
	if err != nil {
		return err
	}
	if err := tpl.Execute(w, page{DashboardView: view}); err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return nil
}

// RenderEmptyHTML writes the warning page shown for a report with no findings.
func RenderEmptyHTML(w io.Writer, title, warning string) error {
	tpl, err := loadTemplate()
	if err != nil {
		return err
	}
	p := page{
		DashboardView: DashboardView{Title: title, GeneratedAt: time.Now().Format(time.RFC1123)},
		Empty:         true,
		Warning:       warning,
	}
	if err := tpl.Execute(w, p); err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return nil
}

// GenerateHTMLReport writes a self-contained dashboard to outputPath. The
// download link carries the filtered export inline.
func GenerateHTMLReport(view DashboardView, outputPath string) error {
	href, err := ExportDataURI(view.Findings)
	if err != nil {
		return fmt.Errorf("build export: %w", err)
	}
	view.Static = true
	view.DownloadHref = href

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := RenderHTML(f, view); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}
