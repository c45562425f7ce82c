// Package charts renders the per-type finding aggregate as bar and pie
// charts. The renderer is picked once at startup from configuration.
package charts

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"cloudwarden/pkg/findings"
)

// Renderer kinds accepted by New.
const (
	KindSVG  = "svg"
	KindText = "text"
	KindNone = "none"
)

// Renderer draws the (type, count) aggregate.
type Renderer interface {
	// Name is the kind the renderer was created for.
	Name() string
	// Markup reports whether output is HTML markup rather than plain text.
	Markup() bool
	Bar(w io.Writer, title string, data []findings.TypeCount) error
	Pie(w io.Writer, title string, data []findings.TypeCount) error
}

type options struct {
	color bool
	width int
}

// Option tweaks a renderer.
type Option func(*options)

// WithColor enables ANSI colours for the text renderer.
func WithColor(enabled bool) Option {
	return func(o *options) { o.color = enabled }
}

// WithWidth sets the maximum bar length (text) or chart width in pixels (svg).
func WithWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
	}
}

// New returns the renderer for kind.
func New(kind string, opts ...Option) (Renderer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindSVG:
		if o.width == 0 {
			o.width = 640
		}
		return &svgRenderer{width: o.width}, nil
	case KindText:
		if o.width == 0 {
			o.width = 40
		}
		return &textRenderer{width: o.width, color: o.color}, nil
	case KindNone:
		return noneRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown chart renderer %q (want one of %s)", kind, strings.Join(Kinds(), ", "))
	}
}

// Kinds lists the accepted renderer kinds.
func Kinds() []string {
	k := []string{KindSVG, KindText, KindNone}
	sort.Strings(k)
	return k
}

// pct is the share of part in total, in percent.
func pct(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100.0
}

func sum(data []findings.TypeCount) int {
	total := 0
	for _, d := range data {
		total += d.Count
	}
	return total
}

func maxCount(data []findings.TypeCount) int {
	m := 0
	for _, d := range data {
		if d.Count > m {
			m = d.Count
		}
	}
	return m
}

type noneRenderer struct{}

const noneHint = "Charts are disabled. Set charts.renderer to \"svg\" or \"text\" to enable them."

func (noneRenderer) Name() string { return KindNone }
func (noneRenderer) Markup() bool { return false }

func (noneRenderer) Bar(w io.Writer, _ string, _ []findings.TypeCount) error {
	_, err := fmt.Fprintln(w, noneHint)
	return err
}

func (noneRenderer) Pie(w io.Writer, _ string, _ []findings.TypeCount) error {
	_, err := fmt.Fprintln(w, noneHint)
	return err
}
