package charts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudwarden/pkg/findings"
)

var sample = []findings.TypeCount{
	{Type: "OverprivilegedUser", Count: 3},
	{Type: "MFADisabled", Count: 1},
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind   string
		name   string
		markup bool
	}{
		{"svg", KindSVG, true},
		{" SVG ", KindSVG, true},
		{"text", KindText, false},
		{"none", KindNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			r, err := New(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.name, r.Name())
			assert.Equal(t, tt.markup, r.Markup())
		})
	}

	_, err := New("matplotlib")
	assert.ErrorContains(t, err, "unknown chart renderer")
}

func TestSVGBar(t *testing.T) {
	r, err := New(KindSVG)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Bar(&buf, "Finding Types Overview", sample))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Contains(t, out, "Finding Types Overview")
	assert.Contains(t, out, "OverprivilegedUser: 3")
	assert.Equal(t, 2, strings.Count(out, "<rect"))
}

func TestSVGPie(t *testing.T) {
	r, err := New(KindSVG)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Pie(&buf, "IAM Finding Distribution", sample))

	out := buf.String()
	assert.Contains(t, out, "OverprivilegedUser: 75.0%")
	assert.Contains(t, out, "MFADisabled: 25.0%")
	assert.Equal(t, 2, strings.Count(out, "<path"))
}

func TestSVGPieSingleSlice(t *testing.T) {
	r, err := New(KindSVG)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Pie(&buf, "pie", []findings.TypeCount{{Type: "A", Count: 4}}))

	assert.Contains(t, buf.String(), "<circle")
	assert.Contains(t, buf.String(), "A: 100.0%")
	assert.NotContains(t, buf.String(), "<path")
}

func TestSVGEscapesLabels(t *testing.T) {
	r, err := New(KindSVG)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Bar(&buf, "<b>", []findings.TypeCount{{Type: `<script>alert(1)</script>`, Count: 1}}))

	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestSVGEmptyData(t *testing.T) {
	r, err := New(KindSVG)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Bar(&buf, "empty", nil))
	require.NoError(t, r.Pie(&buf, "empty", nil))
	assert.Equal(t, 2, strings.Count(buf.String(), "</svg>"))
}

func TestTextBar(t *testing.T) {
	r, err := New(KindText, WithWidth(6), WithColor(false))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Bar(&buf, "Types", sample))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Types", lines[0])
	assert.Equal(t, "OverprivilegedUser | ██████ 3", lines[1])
	assert.Equal(t, "MFADisabled        | ██ 1", lines[2])
}

func TestTextBarAlignsNonASCIILabels(t *testing.T) {
	r, err := New(KindText, WithWidth(2), WithColor(false))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Bar(&buf, "Types", []findings.TypeCount{
		{Type: "Größe", Count: 2},
		{Type: "Zugriff", Count: 1},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Größe   | ██ 2", lines[1])
	assert.Equal(t, "Zugriff | █ 1", lines[2])
}

func TestTextPie(t *testing.T) {
	r, err := New(KindText, WithWidth(4), WithColor(false))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Pie(&buf, "Share", sample))

	assert.Contains(t, buf.String(), "OverprivilegedUser | ▒▒▒  75.0%")
	assert.Contains(t, buf.String(), "MFADisabled        | ▒  25.0%")
}

func TestTextColor(t *testing.T) {
	r, err := New(KindText, WithColor(true))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Bar(&buf, "Types", sample))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestNoneRendererHint(t *testing.T) {
	r, err := New(KindNone)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Bar(&buf, "x", sample))
	require.NoError(t, r.Pie(&buf, "x", sample))
	assert.Equal(t, 2, strings.Count(buf.String(), "Charts are disabled"))
}
