// Package codec opens, edits and saves encrypted container files.
//
// A Handle holds the decrypted entries of one container in memory as an
// ordered, mutable list. Writers must hold the container lock between Open
// and Save; use WithLock so the lock is released on every exit path.
package codec

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-psafe-cache/models"
)

// Mode selects whether a handle may be saved.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

var (
	ErrNotFound         = errors.New("container file not found")
	ErrUnreadable       = errors.New("container file is not readable")
	ErrExists           = errors.New("container file already exists")
	ErrCorrupt          = errors.New("container file is corrupt or not a container")
	ErrBadCredential    = errors.New("wrong container password")
	ErrLockUnavailable  = errors.New("container lock unavailable")
	ErrReadOnly         = errors.New("container opened read-only")
	ErrFieldType        = errors.New("field value has the wrong type")
	ErrFieldNotWritable = errors.New("field is not writable")
)

// Codec is the entry point to a container format.
type Codec interface {
	// Open decrypts the container at path.
	Open(ctx context.Context, path, password string, mode Mode) (Handle, error)

	// Create writes a new empty container and returns a read-write handle.
	Create(ctx context.Context, path, password string, header models.Header) (Handle, error)

	// Probe checks that path looks like a container without decrypting it.
	Probe(path string) error

	// Extension is the filename suffix of containers, including the dot.
	Extension() string

	// Locker returns the advisory lock guarding the container at path. It
	// conflicts with the lock of every handle opened on the same path.
	Locker(path string) Locker
}

// Locker is the advisory exclusive lock of one container path.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock() error
}

// Handle is an opened container.
type Handle interface {
	Locker

	Path() string
	Mode() Mode

	// ContainerUUID is the container's internal unique identifier.
	ContainerUUID() string

	Header() models.Header
	SetHeader(h models.Header)

	// Entries returns the live entries in the container's native order.
	Entries() []*Entry

	// InsertEntry places e at index, clamped to the list bounds.
	InsertEntry(index int, e *Entry)

	// RemoveEntry deletes e and reports whether it was present.
	RemoveEntry(e *Entry) bool

	// Save re-encrypts and persists the container.
	Save(ctx context.Context) error
}

// WithLock runs fn while holding l. The lock is released however fn returns.
func WithLock(ctx context.Context, l Locker, fn func() error) (err error) {
	if err := l.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if unlockErr := l.Unlock(); unlockErr != nil {
			err = errors.Join(err, unlockErr)
		}
	}()

	return fn()
}
