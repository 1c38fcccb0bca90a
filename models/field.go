package models

import (
	"fmt"
	"sort"
)

// Field is the closed set of entry attributes that callers may filter on or
// change. The external names are stable and case-sensitive.
type Field int

const (
	FieldPK Field = iota + 1
	FieldUUID
	FieldGroup
	FieldTitle
	FieldUsername
	FieldNotes
	FieldPassword
	FieldCreationTime
	FieldPasswordModTime
	FieldAccessTime
	FieldPasswordExpiry
	FieldModTime
	FieldURL
	FieldAutoType
	FieldRunCommand
	FieldEmail
	FieldOldPasswords
)

type fieldSpec struct {
	name   string
	kind   ValueKind
	column string
}

var fieldSpecs = map[Field]fieldSpec{
	FieldPK:              {"PK", KindInt, "id"},
	FieldUUID:            {"UUID", KindUUID, "uuid"},
	FieldGroup:           {"Group", KindString, "group_path"},
	FieldTitle:           {"Title", KindString, "title"},
	FieldUsername:        {"Username", KindString, "username"},
	FieldNotes:           {"Notes", KindString, "notes"},
	FieldPassword:        {"Password", KindString, "password"},
	FieldCreationTime:    {"Creation Time", KindTime, "creation_time"},
	FieldPasswordModTime: {"Password Last Modification Time", KindTime, "password_mod_time"},
	FieldAccessTime:      {"Last Access Time", KindTime, "access_time"},
	FieldPasswordExpiry:  {"Password Expiry", KindTime, "password_expiry_time"},
	FieldModTime:         {"Entry Last Modification Time", KindTime, "mod_time"},
	FieldURL:             {"URL", KindString, "url"},
	FieldAutoType:        {"AutoType", KindString, "autotype"},
	FieldRunCommand:      {"Run Command", KindString, "run_command"},
	FieldEmail:           {"Email", KindString, "email"},
	FieldOldPasswords:    {"Old Passwords", KindString, ""},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fieldSpecs))
	for f, s := range fieldSpecs {
		m[s.name] = f
	}
	return m
}()

// ParseField resolves an external field name.
func ParseField(name string) (Field, error) {
	f, ok := fieldsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a valid field name", ErrInvalidField, name)
	}
	return f, nil
}

// Fields returns the whole vocabulary in declaration order.
func Fields() []Field {
	out := make([]Field, 0, len(fieldSpecs))
	for f := range fieldSpecs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f Field) String() string {
	if s, ok := fieldSpecs[f]; ok {
		return s.name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Kind is the value type every filter or change on the field must carry.
func (f Field) Kind() ValueKind {
	return fieldSpecs[f].kind
}

// Column is the cache store column backing the field. Old Passwords has none.
func (f Field) Column() string {
	return fieldSpecs[f].column
}

// Valid reports whether f belongs to the vocabulary.
func (f Field) Valid() bool {
	_, ok := fieldSpecs[f]
	return ok
}

// Writable reports whether the field may appear in a change set.
func (f Field) Writable() bool {
	return f.Valid() && f != FieldPK && f != FieldOldPasswords
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidField, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
