// Package jsoncol decodes JSON-typed database columns into typed values.
//
// Drivers hand JSONB back as []byte, some callers pass strings, and values
// coming from other Go code may already be decoded maps. Decode accepts all
// three and fails with *MalformedError instead of silently defaulting.
package jsoncol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed matches every *MalformedError via errors.Is.
var ErrMalformed = errors.New("malformed json column")

// MalformedError reports which column failed to decode and why.
type MalformedError struct {
	Column string
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed json column %q: %v", e.Column, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMalformed) match.
func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// Decode parses src into dst. A nil or empty src leaves dst untouched.
func Decode(column string, src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case json.RawMessage:
		raw = v
	default:
		// already decoded; round-trip through JSON to get the typed shape
		b, err := json.Marshal(v)
		if err != nil {
			return &MalformedError{Column: column, Err: err}
		}
		raw = b
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &MalformedError{Column: column, Err: err}
	}
	if dec.More() {
		return &MalformedError{Column: column, Err: errors.New("trailing data after json value")}
	}
	return nil
}

// DecodeMap parses an object column into a generic map.
func DecodeMap(column string, src any) (map[string]any, error) {
	var out map[string]any
	if err := Decode(column, src, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode marshals v for a JSONB parameter. nil encodes to an empty object.
func Encode(v any) ([]byte, error) {
	if m, ok := v.(map[string]any); v == nil || (ok && m == nil) {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}
