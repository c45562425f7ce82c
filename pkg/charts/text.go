package charts

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"cloudwarden/pkg/findings"
)

var textColors = []color.Attribute{
	color.FgCyan, color.FgYellow, color.FgRed, color.FgGreen, color.FgMagenta, color.FgBlue,
}

type textRenderer struct {
	width int
	color bool
}

func (t *textRenderer) Name() string { return KindText }
func (t *textRenderer) Markup() bool { return false }

func (t *textRenderer) paint(i int) *color.Color {
	c := color.New(textColors[i%len(textColors)])
	if t.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func labelWidth(data []findings.TypeCount) int {
	w := 0
	for _, d := range data {
		if n := utf8.RuneCountInString(d.Type); n > w {
			w = n
		}
	}
	return w
}

func (t *textRenderer) Bar(w io.Writer, title string, data []findings.TypeCount) error {
	top := maxCount(data)
	lw := labelWidth(data)

	var b strings.Builder
	fmt.Fprintln(&b, title)
	for i, d := range data {
		n := 0
		if top > 0 {
			n = d.Count * t.width / top
		}
		if n == 0 && d.Count > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%-*s | %s %d\n", lw, d.Type, t.paint(i).Sprint(strings.Repeat("█", n)), d.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Pie has no sensible glyph form; it renders each share as a percentage bar.
func (t *textRenderer) Pie(w io.Writer, title string, data []findings.TypeCount) error {
	total := sum(data)
	lw := labelWidth(data)

	var b strings.Builder
	fmt.Fprintln(&b, title)
	for i, d := range data {
		p := pct(d.Count, total)
		n := int(p / 100 * float64(t.width))
		fmt.Fprintf(&b, "%-*s | %s %5.1f%%\n", lw, d.Type, t.paint(i).Sprint(strings.Repeat("▒", n)), p)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
