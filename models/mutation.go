package models

import (
	"fmt"
	"regexp"
	"sort"
)

// ActionKind selects what an Action does to the matched entries.
type ActionKind string

const (
	ActionAdd         ActionKind = "add"
	ActionUpdate      ActionKind = "update"
	ActionDelete      ActionKind = "delete"
	ActionAddOrUpdate ActionKind = "add-update"
)

// ErrorPolicy decides what a batch does when one of its actions fails.
type ErrorPolicy string

const (
	// OnErrorFail aborts the batch on the first failing action; nothing is saved.
	OnErrorFail ErrorPolicy = "fail"
	// OnErrorSkip records the failure and continues with the next action.
	OnErrorSkip ErrorPolicy = "skip"
)

// Filter is an exact-equality match on one field.
type Filter struct {
	Field Field
	Value Value
}

// RegexFilter is an unanchored regex search on the text form of one field.
type RegexFilter struct {
	Field   Field
	Pattern *regexp.Regexp
}

// Change assigns Value to Field.
type Change struct {
	Field Field
	Value Value
}

// Action is one validated step of a mutation batch.
type Action struct {
	Kind         ActionKind
	ValueFilters []Filter
	RegexFilters []RegexFilter
	Changes      []Change

	// MaxMatches caps the number of entries acted upon. Zero means no cap.
	MaxMatches int
}

// Batch is an ordered list of actions applied to one container under one lock.
type Batch struct {
	Actions      []Action
	OnError      ErrorPolicy
	RefreshCache bool
}

// ActionError records a skipped action of a batch.
type ActionError struct {
	Index  int        `json:"index"`
	Kind   ActionKind `json:"action"`
	Error  string     `json:"error"`
	Reason error      `json:"-"`
}

// MutationResult is the outcome of applying a batch.
type MutationResult struct {
	// ChangeCount sums the entries affected by successful actions; an
	// AddOrUpdate that adds counts as one.
	ChangeCount int `json:"changes"`

	Errors []ActionError `json:"errors"`

	// NewEntries lists uuids of the entries created by the batch.
	NewEntries []string `json:"new_entries,omitempty"`
}

// RawAction is the wire form of an Action. Keys of the maps are external
// field names.
type RawAction struct {
	Action     string            `json:"action"`
	VFilters   map[string]any    `json:"vfilters,omitempty"`
	REFilters  map[string]string `json:"refilters,omitempty"`
	Changes    map[string]any    `json:"changes,omitempty"`
	MaxMatches *int              `json:"maxMatches,omitempty"`
}

// RawBatch is the wire form of a Batch.
type RawBatch struct {
	Actions     []RawAction `json:"actions"`
	OnError     string      `json:"onError,omitempty"`
	UpdateCache *bool       `json:"updateCache,omitempty"`
}

// ParseBatch validates a RawBatch. OnError defaults to fail and the cache
// refresh defaults to on.
func ParseBatch(raw RawBatch) (Batch, error) {
	batch := Batch{OnError: OnErrorFail, RefreshCache: true}

	switch ErrorPolicy(raw.OnError) {
	case "":
	case OnErrorFail, OnErrorSkip:
		batch.OnError = ErrorPolicy(raw.OnError)
	default:
		return Batch{}, fmt.Errorf("%w: unknown onError policy %q", ErrInvalidAction, raw.OnError)
	}
	if raw.UpdateCache != nil {
		batch.RefreshCache = *raw.UpdateCache
	}

	batch.Actions = make([]Action, 0, len(raw.Actions))
	for i, ra := range raw.Actions {
		action, err := ParseAction(ra)
		if err != nil {
			return Batch{}, fmt.Errorf("action %d: %w", i, err)
		}
		batch.Actions = append(batch.Actions, action)
	}
	return batch, nil
}

// ParseAction validates field names, value types and regexes of a RawAction.
func ParseAction(raw RawAction) (Action, error) {
	action := Action{Kind: ActionKind(raw.Action)}

	switch action.Kind {
	case ActionAdd:
		if len(raw.VFilters) > 0 || len(raw.REFilters) > 0 {
			return Action{}, fmt.Errorf("%w: add takes no filters", ErrInvalidAction)
		}
	case ActionUpdate, ActionAddOrUpdate:
		if len(raw.Changes) == 0 {
			return Action{}, fmt.Errorf("%w: %s needs changes", ErrInvalidAction, action.Kind)
		}
	case ActionDelete:
		if len(raw.Changes) > 0 {
			return Action{}, fmt.Errorf("%w: delete takes no changes", ErrInvalidAction)
		}
	default:
		return Action{}, fmt.Errorf("%w: %q isn't a valid action", ErrInvalidAction, raw.Action)
	}

	if raw.MaxMatches != nil {
		if *raw.MaxMatches < 0 {
			return Action{}, fmt.Errorf("%w: maxMatches must not be negative", ErrInvalidAction)
		}
		action.MaxMatches = *raw.MaxMatches
	}

	for _, name := range sortedKeys(raw.VFilters) {
		f, err := ParseFilter(name, raw.VFilters[name])
		if err != nil {
			return Action{}, err
		}
		action.ValueFilters = append(action.ValueFilters, f)
	}

	for _, name := range sortedKeys(raw.REFilters) {
		f, err := ParseRegexFilter(name, raw.REFilters[name])
		if err != nil {
			return Action{}, err
		}
		action.RegexFilters = append(action.RegexFilters, f)
	}

	for _, name := range sortedKeys(raw.Changes) {
		c, err := ParseChange(name, raw.Changes[name])
		if err != nil {
			return Action{}, err
		}
		action.Changes = append(action.Changes, c)
	}

	return action, nil
}

// ParseFilter builds a value filter. On Old Passwords the value matches when
// some previous password contains it.
func ParseFilter(name string, raw any) (Filter, error) {
	field, err := ParseField(name)
	if err != nil {
		return Filter{}, err
	}
	v, err := ParseValue(field, raw)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Field: field, Value: v}, nil
}

// ParseRegexFilter compiles pattern for field. On Old Passwords the pattern
// is tried against every previous password.
func ParseRegexFilter(name, pattern string) (RegexFilter, error) {
	field, err := ParseField(name)
	if err != nil {
		return RegexFilter{}, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RegexFilter{}, fmt.Errorf("%w: %q: %w", ErrInvalidValue, pattern, err)
	}
	return RegexFilter{Field: field, Pattern: re}, nil
}

// ParseChange validates one assignment.
func ParseChange(name string, raw any) (Change, error) {
	field, err := ParseField(name)
	if err != nil {
		return Change{}, err
	}
	if !field.Writable() {
		return Change{}, fmt.Errorf("%w: %q can't be changed", ErrInvalidField, name)
	}
	v, err := ParseValue(field, raw)
	if err != nil {
		return Change{}, err
	}
	return Change{Field: field, Value: v}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
