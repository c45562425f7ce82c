package findings

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
)

// Report is the ordered set of findings loaded for one session. It is never
// modified after Load; every query returns a new slice.
type Report struct {
	findings []Finding
}

// NewReport builds a report from already validated findings.
func NewReport(findings []Finding) *Report {
	out := make([]Finding, len(findings))
	copy(out, findings)
	return &Report{findings: out}
}

// Len returns the number of findings in the report.
func (r *Report) Len() int { return len(r.findings) }

// Findings returns a copy of every finding in report order.
func (r *Report) Findings() []Finding {
	out := make([]Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// DistinctTypes returns every finding type present in the report.
func (r *Report) DistinctTypes() TypeSet {
	s := make(TypeSet)
	for _, f := range r.findings {
		s[f.Type] = struct{}{}
	}
	return s
}

// Types returns the distinct finding types in first-appearance order.
func (r *Report) Types() []string {
	seen := make(TypeSet)
	var out []string
	for _, f := range r.findings {
		if seen.Has(f.Type) {
			continue
		}
		seen[f.Type] = struct{}{}
		out = append(out, f.Type)
	}
	return out
}

// FilterByTypes returns the findings whose type is in selected, keeping
// report order. An empty selection yields no findings.
func (r *Report) FilterByTypes(selected TypeSet) []Finding {
	out := make([]Finding, 0, len(r.findings))
	if selected.Len() == 0 {
		return out
	}
	for _, f := range r.findings {
		if selected.Has(f.Type) {
			out = append(out, f)
		}
	}
	return out
}

// CountByType groups findings by type. Entries are ordered by descending
// count; equal counts keep the order in which the type first appeared.
func CountByType(findings []Finding) []TypeCount {
	idx := map[string]int{}
	var counts []TypeCount
	for _, f := range findings {
		i, ok := idx[f.Type]
		if !ok {
			i = len(counts)
			idx[f.Type] = i
			counts = append(counts, TypeCount{Type: f.Type})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// DistinctUserCount returns how many different users the findings implicate.
func DistinctUserCount(findings []Finding) int {
	users := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		users[f.User] = struct{}{}
	}
	return len(users)
}

// Columns returns the union of field names over findings, in the order
// they first appear.
func Columns(findings []Finding) []string {
	seen := map[string]struct{}{}
	var cols []string
	for _, f := range findings {
		for _, fd := range f.fields {
			if _, ok := seen[fd.Key]; ok {
				continue
			}
			seen[fd.Key] = struct{}{}
			cols = append(cols, fd.Key)
		}
	}
	return cols
}

// ToExportable converts findings into records carrying every original field.
func ToExportable(findings []Finding) []Record {
	out := make([]Record, 0, len(findings))
	for _, f := range findings {
		out = append(out, Record(f.Fields()))
	}
	return out
}

// MarshalExport renders findings as a JSON array indented by two spaces.
// Values are written as loaded, without HTML escaping.
func MarshalExport(findings []Finding) ([]byte, error) {
	var buf bytes.Buffer
	if err := Export(&buf, findings); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Export writes the MarshalExport payload followed by a newline.
func Export(w io.Writer, findings []Finding) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(ToExportable(findings))
}
