// Package payload decodes request bodies while remembering which fields the
// client actually sent, so partial updates can tell "absent" from "null".
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

var ErrNotObject = errors.New("request body must be a JSON object")

// Fields is a decoded JSON object keyed by field name.
type Fields map[string]json.RawMessage

// Decode reads a JSON object. An empty body decodes to no fields.
func Decode(r io.Reader) (Fields, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Fields{}, nil
	}
	if body[0] != '{' {
		return nil, ErrNotObject
	}
	var f Fields
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, err
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}

func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

func (f Fields) IsNull(name string) bool {
	raw, ok := f[name]
	return ok && string(bytes.TrimSpace(raw)) == "null"
}

// Reader pulls typed values out of Fields and records a message per field
// that has the wrong shape.
type Reader struct {
	fields   Fields
	problems map[string]string
}

func (f Fields) Reader() *Reader {
	return &Reader{fields: f, problems: map[string]string{}}
}

// Problems returns the type errors collected so far, keyed by field.
func (r *Reader) Problems() map[string]string {
	return r.problems
}

func (r *Reader) fail(name, msg string) {
	if _, seen := r.problems[name]; !seen {
		r.problems[name] = msg
	}
}

// String reports the field's string value and whether it was sent.
// null reads as the empty string.
func (r *Reader) String(name string) (string, bool) {
	raw, ok := r.fields[name]
	if !ok {
		return "", false
	}
	if r.fields.IsNull(name) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		r.fail(name, "must be a string")
		return "", true
	}
	return s, true
}

// NullableString is String for columns that accept null: a sent null is a nil pointer.
func (r *Reader) NullableString(name string) (*string, bool) {
	if !r.fields.Has(name) {
		return nil, false
	}
	if r.fields.IsNull(name) {
		return nil, true
	}
	s, _ := r.String(name)
	if _, bad := r.problems[name]; bad {
		return nil, true
	}
	return &s, true
}

// Number accepts a JSON number or a string holding one. A sent null
// yields (nil, true) and is left to the caller.
func (r *Reader) Number(name string) (*float64, bool) {
	raw, ok := r.fields[name]
	if !ok {
		return nil, false
	}
	if r.fields.IsNull(name) {
		return nil, true
	}
	v, err := parseNumber(raw)
	if err != nil {
		r.fail(name, "must be a non-negative number")
		return nil, true
	}
	return &v, true
}

// Integer is Number restricted to whole values.
func (r *Reader) Integer(name string) (*int, bool) {
	v, ok := r.Number(name)
	if v == nil {
		return nil, ok
	}
	if *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		r.fail(name, "must be a whole non-negative number")
		return nil, true
	}
	n := int(*v)
	return &n, true
}

func parseNumber(raw json.RawMessage) (float64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return finite(n.String())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty number")
	}
	return finite(s)
}

func finite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("number is not finite")
	}
	return v, nil
}
