package models

import (
	"strings"
	"time"
)

// Entry is a cached copy of one credential record of a container.
type Entry struct {
	ID          int64  `json:"pk"`
	SnapshotID  int64  `json:"-"`
	ContainerID int64  `json:"container_id"`
	UUID        string `json:"uuid"`

	Group    string `json:"group"`
	Title    string `json:"title"`
	Username string `json:"username"`
	Notes    string `json:"notes"`
	Password string `json:"password"`

	CreationTime       time.Time `json:"creation_time"`
	PasswordModTime    time.Time `json:"password_mod_time"`
	AccessTime         time.Time `json:"access_time"`
	PasswordExpiryTime time.Time `json:"password_expiry_time"`
	ModTime            time.Time `json:"mod_time"`

	URL        string `json:"url"`
	AutoType   string `json:"autotype"`
	RunCommand string `json:"run_command"`
	Email      string `json:"email"`

	History []HistoryItem `json:"history,omitempty"`
}

// HistoryItem is one previous password of an entry.
type HistoryItem struct {
	ID           int64     `json:"-"`
	EntryID      int64     `json:"-"`
	Password     string    `json:"password"`
	CreationTime time.Time `json:"creation_time"`
}

// Key identifies a history item by its (creation time, password) pair.
func (h HistoryItem) Key() string {
	return h.CreationTime.UTC().Format(time.RFC3339Nano) + "\x00" + h.Password
}

// Get returns the value of field for the cached entry.
// Old Passwords matches by substring over the history and is not readable as
// a single value.
func (e Entry) Get(field Field) (Value, bool) {
	switch field {
	case FieldPK:
		return IntValue(e.ID), true
	case FieldUUID:
		return UUIDString(e.UUID)
	case FieldGroup:
		return StringValue(e.Group), true
	case FieldTitle:
		return StringValue(e.Title), true
	case FieldUsername:
		return StringValue(e.Username), true
	case FieldNotes:
		return StringValue(e.Notes), true
	case FieldPassword:
		return StringValue(e.Password), true
	case FieldCreationTime:
		return TimeValue(e.CreationTime), true
	case FieldPasswordModTime:
		return TimeValue(e.PasswordModTime), true
	case FieldAccessTime:
		return TimeValue(e.AccessTime), true
	case FieldPasswordExpiry:
		return TimeValue(e.PasswordExpiryTime), true
	case FieldModTime:
		return TimeValue(e.ModTime), true
	case FieldURL:
		return StringValue(e.URL), true
	case FieldAutoType:
		return StringValue(e.AutoType), true
	case FieldRunCommand:
		return StringValue(e.RunCommand), true
	case FieldEmail:
		return StringValue(e.Email), true
	}
	return Value{}, false
}

// HistoryContains reports whether any old password contains substr.
func (e Entry) HistoryContains(substr string) bool {
	for _, h := range e.History {
		if strings.Contains(h.Password, substr) {
			return true
		}
	}
	return false
}
