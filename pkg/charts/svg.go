package charts

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"cloudwarden/pkg/findings"
)

// palette is cycled through for bars and slices.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

func colorAt(i int) string { return palette[i%len(palette)] }

type svgRenderer struct {
	width int
}

func (s *svgRenderer) Name() string { return KindSVG }
func (s *svgRenderer) Markup() bool { return true }

const (
	barHeight = 22
	barGap    = 8
	labelW    = 180
)

func (s *svgRenderer) Bar(w io.Writer, title string, data []findings.TypeCount) error {
	var b strings.Builder
	height := 30 + len(data)*(barHeight+barGap)
	plotW := s.width - labelW - 60
	top := maxCount(data)

	fmt.Fprintf(&b, `<svg class="chart bar" xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" role="img" aria-label="%s">`,
		s.width, height, esc(title))
	fmt.Fprintf(&b, `<text x="0" y="16" class="chart-title">%s</text>`, esc(title))
	for i, d := range data {
		y := 30 + i*(barHeight+barGap)
		bw := 0
		if top > 0 {
			bw = int(math.Round(float64(d.Count) / float64(top) * float64(plotW)))
		}
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="end">%s</text>`, labelW-8, y+barHeight-6, esc(d.Type))
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"><title>%s: %d</title></rect>`,
			labelW, y, bw, barHeight, colorAt(i), esc(d.Type), d.Count)
		fmt.Fprintf(&b, `<text x="%d" y="%d">%d</text>`, labelW+bw+6, y+barHeight-6, d.Count)
	}
	b.WriteString(`</svg>`)

	_, err := io.WriteString(w, b.String())
	return err
}

func (s *svgRenderer) Pie(w io.Writer, title string, data []findings.TypeCount) error {
	var b strings.Builder
	const r = 120.0
	cx, cy := r+10, r+30
	total := sum(data)
	height := int(2*r) + 40
	if legend := 30 + len(data)*20; legend > height {
		height = legend
	}

	fmt.Fprintf(&b, `<svg class="chart pie" xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" role="img" aria-label="%s">`,
		s.width, height, esc(title))
	fmt.Fprintf(&b, `<text x="0" y="16" class="chart-title">%s</text>`, esc(title))

	angle := -math.Pi / 2
	for i, d := range data {
		if d.Count == 0 || total == 0 {
			continue
		}
		share := float64(d.Count) / float64(total)
		label := fmt.Sprintf("%s: %.1f%%", esc(d.Type), pct(d.Count, total))

		if d.Count == total {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s</title></circle>`,
				cx, cy, r, colorAt(i), label)
			continue
		}

		end := angle + share*2*math.Pi
		x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
		x2, y2 := cx+r*math.Cos(end), cy+r*math.Sin(end)
		large := 0
		if share > 0.5 {
			large = 1
		}
		fmt.Fprintf(&b, `<path d="M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d,1 %.2f,%.2f Z" fill="%s"><title>%s</title></path>`,
			cx, cy, x1, y1, r, r, large, x2, y2, colorAt(i), label)
		angle = end
	}

	lx := int(cx+r) + 30
	for i, d := range data {
		y := 40 + i*20
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`, lx, y-10, colorAt(i))
		fmt.Fprintf(&b, `<text x="%d" y="%d">%s (%.1f%%)</text>`, lx+18, y, esc(d.Type), pct(d.Count, total))
	}
	b.WriteString(`</svg>`)

	_, err := io.WriteString(w, b.String())
	return err
}

func esc(s string) string { return template.HTMLEscapeString(s) }
