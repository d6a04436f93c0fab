package nacha

import (
	"fmt"
	"strings"
)

// RecordLength is the width of every NACHA record
const RecordLength = 94

// Kind selects justification, padding and validation for a field
type Kind int

const (
	// Alphanumeric is left-justified and space padded. Values are upper-cased,
	// non-printable or non-ASCII bytes become spaces, overlong values are truncated.
	Alphanumeric Kind = iota
	// Numeric is right-justified and zero padded. Only digits are accepted and a
	// value wider than the field is an error.
	Numeric
	// RightAlphanumeric is right-justified and space padded. Overlong values are an error.
	RightAlphanumeric
	// Constant always emits Field.Value
	Constant
)

// Field describes one fixed-width column
type Field struct {
	Name  string
	Value string // Constant only
	Width int
	Kind  Kind
}

// Layout is an ordered record schema
type Layout struct {
	Name   string
	Fields []Field
}

// EncodeError reports which record and field failed to encode
type EncodeError struct {
	Record string
	Field  string
	Reason string
}

func (e *EncodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("nacha %s: %s", e.Record, e.Reason)
	}
	return fmt.Sprintf("nacha %s.%s: %s", e.Record, e.Field, e.Reason)
}

// Width returns the total width of the layout
func (l Layout) Width() int {
	w := 0
	for _, f := range l.Fields {
		w += f.Width
	}
	return w
}

// Validate checks that the layout is exactly one record wide and that constants fit
func (l Layout) Validate() error {
	if w := l.Width(); w != RecordLength {
		return &EncodeError{Record: l.Name, Reason: fmt.Sprintf("layout is %d characters, want %d", w, RecordLength)}
	}
	for _, f := range l.Fields {
		if f.Width <= 0 {
			return &EncodeError{Record: l.Name, Field: f.Name, Reason: "width must be positive"}
		}
		if f.Kind == Constant && len(f.Value) != f.Width {
			return &EncodeError{Record: l.Name, Field: f.Name, Reason: fmt.Sprintf("constant %q is not %d characters", f.Value, f.Width)}
		}
	}
	return nil
}

// Encode renders values into a single record. Fields missing from values encode
// as blanks (or zeros for Numeric).
func (l Layout) Encode(values map[string]string) (string, error) {
	if err := l.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(RecordLength)
	for _, f := range l.Fields {
		s, err := encodeField(f, values[f.Name])
		if err != nil {
			return "", &EncodeError{Record: l.Name, Field: f.Name, Reason: err.Error()}
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Decode slices a record back into trimmed field values
func (l Layout) Decode(record string) (map[string]string, error) {
	if len(record) != RecordLength {
		return nil, &EncodeError{Record: l.Name, Reason: fmt.Sprintf("record is %d characters, want %d", len(record), RecordLength)}
	}

	out := make(map[string]string, len(l.Fields))
	pos := 0
	for _, f := range l.Fields {
		raw := record[pos : pos+f.Width]
		pos += f.Width
		if f.Kind == Constant {
			if raw != f.Value {
				return nil, &EncodeError{Record: l.Name, Field: f.Name, Reason: fmt.Sprintf("got %q, want %q", raw, f.Value)}
			}
		}
		out[f.Name] = strings.TrimSpace(raw)
	}
	return out, nil
}

func encodeField(f Field, v string) (string, error) {
	switch f.Kind {
	case Constant:
		return f.Value, nil
	case Numeric:
		if v == "" {
			return strings.Repeat("0", f.Width), nil
		}
		for i := 0; i < len(v); i++ {
			if v[i] < '0' || v[i] > '9' {
				return "", fmt.Errorf("%q is not numeric", v)
			}
		}
		if len(v) > f.Width {
			return "", fmt.Errorf("%q overflows %d digits", v, f.Width)
		}
		return strings.Repeat("0", f.Width-len(v)) + v, nil
	case RightAlphanumeric:
		v = sanitize(v)
		if len(v) > f.Width {
			return "", fmt.Errorf("%q exceeds %d characters", v, f.Width)
		}
		return strings.Repeat(" ", f.Width-len(v)) + v, nil
	default:
		v = sanitize(v)
		if len(v) > f.Width {
			return v[:f.Width], nil
		}
		return v + strings.Repeat(" ", f.Width-len(v)), nil
	}
}

// sanitize upper-cases and maps anything outside printable ASCII to a space
func sanitize(v string) string {
	b := make([]byte, 0, len(v))
	for _, r := range strings.ToUpper(v) {
		if r < 0x20 || r > 0x7e {
			b = append(b, ' ')
			continue
		}
		b = append(b, byte(r))
	}
	return string(b)
}
