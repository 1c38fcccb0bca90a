package models

import (
	"fmt"
)

// FieldValues is a set of acceptable (or rejected) values for one field.
type FieldValues struct {
	Field  Field
	Values []Value
}

// SearchQuery selects cached entries of one container. An entry matches when
// every Include field holds one of its values and no Exclude field does.
// Old Passwords matches by substring over the history.
type SearchQuery struct {
	Include []FieldValues
	Exclude []FieldValues
}

// ParseSearchQuery validates the wire form of a search: field name to list
// of values.
func ParseSearchQuery(include, exclude map[string][]any) (SearchQuery, error) {
	var q SearchQuery
	var err error

	if q.Include, err = parseFieldValues("include", include); err != nil {
		return SearchQuery{}, err
	}
	if q.Exclude, err = parseFieldValues("exclude", exclude); err != nil {
		return SearchQuery{}, err
	}
	return q, nil
}

func parseFieldValues(filterName string, raw map[string][]any) ([]FieldValues, error) {
	out := make([]FieldValues, 0, len(raw))
	for _, name := range sortedKeys(raw) {
		field, err := ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filterName, err)
		}
		fv := FieldValues{Field: field, Values: make([]Value, 0, len(raw[name]))}
		for _, rv := range raw[name] {
			v, err := ParseValue(field, rv)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filterName, err)
			}
			fv.Values = append(fv.Values, v)
		}
		out = append(out, fv)
	}
	return out, nil
}

// Matches evaluates the query against a cached entry.
func (q SearchQuery) Matches(e Entry) bool {
	for _, fv := range q.Include {
		if !fv.matches(e) {
			return false
		}
	}
	for _, fv := range q.Exclude {
		if fv.matches(e) {
			return false
		}
	}
	return true
}

func (fv FieldValues) matches(e Entry) bool {
	if fv.Field == FieldOldPasswords {
		for _, v := range fv.Values {
			if !e.HistoryContains(v.String()) {
				return false
			}
		}
		return true
	}

	got, ok := e.Get(fv.Field)
	if !ok {
		return false
	}
	for _, v := range fv.Values {
		if got.Equal(v) {
			return true
		}
	}
	return false
}
