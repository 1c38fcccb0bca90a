package codec

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/google/uuid"
)

// Entry is one live credential record of an opened container.
type Entry struct {
	uuid string

	group    string
	title    string
	username string
	notes    string
	password string

	created          time.Time
	passwordModified time.Time
	accessed         time.Time
	expires          time.Time
	modified         time.Time

	url        string
	autoType   string
	runCommand string
	email      string

	history []models.HistoryItem
	// stored counts the history items already present in native.
	stored int

	// native is the format-specific record the entry was read from, kept so
	// that attributes outside the field vocabulary survive a save.
	native any

	now func() time.Time
}

// NewEntry returns an entry with a fresh uuid and all times set to now.
func NewEntry() *Entry {
	now := time.Now().UTC()
	return &Entry{
		uuid:             uuid.NewString(),
		created:          now,
		passwordModified: now,
		accessed:         now,
		modified:         now,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (e *Entry) UUID() string { return e.uuid }

// History returns the previous passwords, oldest first.
func (e *Entry) History() []models.HistoryItem {
	out := make([]models.HistoryItem, len(e.history))
	copy(out, e.history)
	return out
}

// Get returns the value of field. PK and Old Passwords are not entry
// attributes and yield false.
func (e *Entry) Get(field models.Field) (models.Value, bool) {
	switch field {
	case models.FieldUUID:
		return models.UUIDString(e.uuid)
	case models.FieldGroup:
		return models.StringValue(e.group), true
	case models.FieldTitle:
		return models.StringValue(e.title), true
	case models.FieldUsername:
		return models.StringValue(e.username), true
	case models.FieldNotes:
		return models.StringValue(e.notes), true
	case models.FieldPassword:
		return models.StringValue(e.password), true
	case models.FieldCreationTime:
		return models.TimeValue(e.created), true
	case models.FieldPasswordModTime:
		return models.TimeValue(e.passwordModified), true
	case models.FieldAccessTime:
		return models.TimeValue(e.accessed), true
	case models.FieldPasswordExpiry:
		return models.TimeValue(e.expires), true
	case models.FieldModTime:
		return models.TimeValue(e.modified), true
	case models.FieldURL:
		return models.StringValue(e.url), true
	case models.FieldAutoType:
		return models.StringValue(e.autoType), true
	case models.FieldRunCommand:
		return models.StringValue(e.runCommand), true
	case models.FieldEmail:
		return models.StringValue(e.email), true
	}
	return models.Value{}, false
}

// Set assigns v to field. A real change bumps the entry modification time;
// a new password pushes the old one onto the history.
func (e *Entry) Set(field models.Field, v models.Value) error {
	if !field.Writable() {
		return fmt.Errorf("%w: %s", ErrFieldNotWritable, field)
	}
	if v.Kind() != field.Kind() {
		return fmt.Errorf("%w: %s wants %s, got %s", ErrFieldType, field, field.Kind(), v.Kind())
	}
	if cur, ok := e.Get(field); ok && cur.Equal(v) {
		return nil
	}

	now := e.clock()
	switch field {
	case models.FieldUUID:
		e.uuid = v.String()
	case models.FieldGroup:
		e.group = v.String()
	case models.FieldTitle:
		e.title = v.String()
	case models.FieldUsername:
		e.username = v.String()
	case models.FieldNotes:
		e.notes = v.String()
	case models.FieldPassword:
		if e.password != "" {
			saved := e.passwordModified
			if saved.IsZero() {
				saved = e.modified
			}
			e.history = append(e.history, models.HistoryItem{Password: e.password, CreationTime: saved})
		}
		e.password = v.String()
		e.passwordModified = now
	case models.FieldCreationTime:
		e.created = v.Time()
	case models.FieldPasswordModTime:
		e.passwordModified = v.Time()
	case models.FieldAccessTime:
		e.accessed = v.Time()
	case models.FieldPasswordExpiry:
		e.expires = v.Time()
	case models.FieldModTime:
		e.modified = v.Time()
		return nil
	case models.FieldURL:
		e.url = v.String()
	case models.FieldAutoType:
		e.autoType = v.String()
	case models.FieldRunCommand:
		e.runCommand = v.String()
	case models.FieldEmail:
		e.email = v.String()
	}
	e.modified = now
	return nil
}

// Model converts the entry into its cached representation.
func (e *Entry) Model() models.Entry {
	return models.Entry{
		UUID:               e.uuid,
		Group:              e.group,
		Title:              e.title,
		Username:           e.username,
		Notes:              e.notes,
		Password:           e.password,
		CreationTime:       e.created,
		PasswordModTime:    e.passwordModified,
		AccessTime:         e.accessed,
		PasswordExpiryTime: e.expires,
		ModTime:            e.modified,
		URL:                e.url,
		AutoType:           e.autoType,
		RunCommand:         e.runCommand,
		Email:              e.email,
		History:            e.History(),
	}
}

func (e *Entry) clock() time.Time {
	if e.now == nil {
		return time.Now().UTC()
	}
	return e.now()
}
