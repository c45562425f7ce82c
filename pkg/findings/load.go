package findings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrEmptyReport is returned when the report holds no findings.
	ErrEmptyReport = errors.New("no findings in report")
	// ErrReportNotFound is returned when the report file does not exist.
	ErrReportNotFound = errors.New("audit report not found")
)

// MalformedReportError describes why a report could not be loaded.
// Index is the offending entry, or -1 when the document itself is wrong.
type MalformedReportError struct {
	Index  int
	Reason string
}

func (e *MalformedReportError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed report: %s", e.Reason)
	}
	return fmt.Sprintf("malformed report: entry %d: %s", e.Index, e.Reason)
}

func malformed(index int, format string, args ...any) error {
	return &MalformedReportError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

// LoadFile reads and validates the report at path.
func LoadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s: %w", ErrReportNotFound, path, err)
		}
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses a JSON array of finding objects. Every entry must carry a
// non-empty string "type" and a string "user"; the whole load is rejected
// on the first entry that does not.
func Load(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, malformed(-1, "expected a JSON array of objects: %v", err)
	}
	if entries == nil {
		// a bare null decodes without error
		return nil, malformed(-1, "expected a JSON array of objects, got null")
	}
	if len(entries) == 0 {
		return nil, ErrEmptyReport
	}

	out := make([]Finding, 0, len(entries))
	for i, raw := range entries {
		f, err := decodeFinding(raw)
		if err != nil {
			return nil, malformed(i, "%v", err)
		}
		out = append(out, f)
	}

	return NewReport(out), nil
}

func decodeFinding(raw json.RawMessage) (Finding, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return Finding{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Finding{}, errors.New("entry is not an object")
	}

	var f Finding
	pos := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Finding{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Finding{}, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return Finding{}, fmt.Errorf("field %q: %w", key, err)
		}
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, value); err != nil {
			return Finding{}, fmt.Errorf("field %q: %w", key, err)
		}

		// duplicate keys: last value wins, first position is kept
		if i, seen := pos[key]; seen {
			f.fields[i].Value = compacted.Bytes()
			continue
		}
		pos[key] = len(f.fields)
		f.fields = append(f.fields, Field{Key: key, Value: compacted.Bytes()})
	}

	typ, err := requiredString(f, TypeKey)
	if err != nil {
		return Finding{}, err
	}
	if typ == "" {
		return Finding{}, fmt.Errorf("field %q is empty", TypeKey)
	}
	user, err := requiredString(f, UserKey)
	if err != nil {
		return Finding{}, err
	}

	f.Type = typ
	f.User = user
	return f, nil
}

func requiredString(f Finding, key string) (string, error) {
	raw, ok := f.Raw(key)
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	if s == nil {
		return "", fmt.Errorf("field %q is null", key)
	}
	return *s, nil
}
