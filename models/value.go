package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ValueKind tags the payload carried by a Value.
type ValueKind int

const (
	KindString ValueKind = iota + 1
	KindInt
	KindUUID
	KindTime
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUUID:
		return "uuid"
	case KindTime:
		return "datetime"
	}
	return "unknown"
}

// Value is a typed field value. The zero Value is invalid.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	t    time.Time
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

func UUIDValue(u uuid.UUID) Value { return Value{kind: KindUUID, s: u.String()} }

func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t.UTC()} }

// UUIDString parses s as a uuid value. An empty or malformed s yields false.
func UUIDString(s string) (Value, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Value{}, false
	}
	return UUIDValue(u), true
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsValid() bool { return v.kind != 0 }

func (v Value) Int() int64 { return v.i }

func (v Value) Time() time.Time { return v.t }

// String renders the value as text. Regex filters match against this form.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindTime:
		if v.t.IsZero() {
			return ""
		}
		return v.t.Format(time.RFC3339Nano)
	}
	return v.s
}

// Equal compares kind and payload. Times compare by instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindTime:
		return v.t.Equal(o.t)
	}
	return v.s == o.s
}

// SQLArg returns the value in the form bound to a store query.
func (v Value) SQLArg() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindTime:
		return v.t
	}
	return v.s
}

// MarshalJSON renders the payload without the tag.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindTime:
		return json.Marshal(v.t)
	}
	return json.Marshal(v.s)
}

// ParseValue converts raw input (as produced by encoding/json or typed Go
// values) into a Value of the kind required by field.
func ParseValue(field Field, raw any) (Value, error) {
	if !field.Valid() {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidField, int(field))
	}

	bad := func() (Value, error) {
		return Value{}, fmt.Errorf("%w: %v for field %q is not of type %s", ErrInvalidValue, raw, field, field.Kind())
	}

	switch field.Kind() {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return bad()
		}
		return StringValue(s), nil
	case KindInt:
		switch n := raw.(type) {
		case int:
			return IntValue(int64(n)), nil
		case int64:
			return IntValue(n), nil
		case float64:
			if n != math.Trunc(n) {
				return bad()
			}
			return IntValue(int64(n)), nil
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return bad()
			}
			return IntValue(i), nil
		}
		return bad()
	case KindUUID:
		switch u := raw.(type) {
		case uuid.UUID:
			return UUIDValue(u), nil
		case string:
			if v, ok := UUIDString(u); ok {
				return v, nil
			}
		}
		return bad()
	case KindTime:
		switch t := raw.(type) {
		case time.Time:
			return TimeValue(t), nil
		case string:
			parsed, err := time.Parse(time.RFC3339, t)
			if err != nil {
				return bad()
			}
			return TimeValue(parsed), nil
		}
		return bad()
	}
	return bad()
}
