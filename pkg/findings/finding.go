// Package findings holds the IAM audit report model and the queries the
// dashboard runs over it: type filtering, per-type counts, affected users
// and the filtered export.
package findings

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	// TypeKey and UserKey are the two fields every finding must carry.
	TypeKey = "type"
	UserKey = "user"
)

// Field is a single key/value pair of a finding, as it appeared in the report.
// Value is compacted JSON.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Finding is one audit result. Type and User are decoded for the queries;
// every field, including those two, is kept in its original order so the
// finding can be written back out unchanged.
type Finding struct {
	Type string
	User string

	fields []Field
}

// Fields returns a copy of the finding's fields in report order.
func (f Finding) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Raw returns the raw JSON value stored under key.
func (f Finding) Raw(key string) (json.RawMessage, bool) {
	for _, fd := range f.fields {
		if fd.Key == key {
			return fd.Value, true
		}
	}
	return nil, false
}

// Value renders the field for display. Strings are unquoted, null and
// missing fields are empty, anything else is shown as JSON.
func (f Finding) Value(key string) string {
	raw, ok := f.Raw(key)
	if !ok || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// MarshalJSON writes the finding as an object with its original field order.
func (f Finding) MarshalJSON() ([]byte, error) {
	return Record(f.fields).MarshalJSON()
}

// Record is an ordered key/value record ready for re-serialisation.
type Record []Field

// MarshalJSON writes the record as a JSON object keeping field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fd := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, fd.Key); err != nil {
			return nil, err
		}
		if len(fd.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(fd.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	// Encode terminates with a newline; swap it for the separator.
	buf.Truncate(buf.Len() - 1)
	buf.WriteByte(':')
	return nil
}

// TypeSet is an unordered set of finding types.
type TypeSet map[string]struct{}

// NewTypeSet builds a set from the given types. Blank entries are ignored.
func NewTypeSet(types ...string) TypeSet {
	s := make(TypeSet, len(types))
	for _, t := range types {
		if strings.TrimSpace(t) == "" {
			continue
		}
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether t is in the set.
func (s TypeSet) Has(t string) bool {
	_, ok := s[t]
	return ok
}

// Len returns the number of types in the set.
func (s TypeSet) Len() int { return len(s) }

// TypeCount is one entry of the per-type aggregate.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}
