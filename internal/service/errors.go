package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/internal/access"
	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied wraps ErrNotFound so that users can't tell a resource
	// they may not see from one that does not exist.
	ErrAccessDenied      = fmt.Errorf("%w: access denied", ErrNotFound)
	ErrInvalidQuery      = errors.New("invalid query")
	ErrBadCredential     = errors.New("bad credential")
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrLockUnavailable   = errors.New("container lock unavailable")
	ErrMultipleMatches   = errors.New("multiple matches")
	ErrNoStoredPassword  = errors.New("no stored password for container")
	ErrCorruptContainer  = errors.New("corrupt container")
	ErrInvalidMode       = access.ErrInvalidMode

	// ErrCacheStale means a mutation reached disk but the cache refresh that
	// follows it failed. Retry the refresh, not the mutation.
	ErrCacheStale = errors.New("container saved but cache refresh failed")

	ErrInvalidDataProvided = errors.New("invalid data provided")
)

// Error codes returned by ErrorCode.
const (
	CodeNotFound          = "not_found"
	CodeInvalidQuery      = "invalid_query"
	CodeBadCredential     = "bad_credential"
	CodeDuplicateIdentity = "duplicate_identity"
	CodeLockUnavailable   = "lock_unavailable"
	CodeMultipleMatches   = "multiple_matches"
	CodeNoStoredPassword  = "no_stored_password"
	CodeCorrupt           = "corrupt_container"
	CodeCacheStale        = "cache_stale"
	CodeInternal          = "internal"
)

// ErrorCode maps err to a short stable code for callers. Access denial is
// reported as not_found; caller bugs such as an invalid mode are internal.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidMode):
		return CodeInternal
	case errors.Is(err, ErrCacheStale):
		return CodeCacheStale
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrInvalidDataProvided),
		errors.Is(err, models.ErrInvalidField), errors.Is(err, models.ErrInvalidValue), errors.Is(err, models.ErrInvalidAction):
		return CodeInvalidQuery
	case errors.Is(err, ErrBadCredential):
		return CodeBadCredential
	case errors.Is(err, ErrDuplicateIdentity):
		return CodeDuplicateIdentity
	case errors.Is(err, ErrLockUnavailable):
		return CodeLockUnavailable
	case errors.Is(err, ErrMultipleMatches):
		return CodeMultipleMatches
	case errors.Is(err, ErrNoStoredPassword):
		return CodeNoStoredPassword
	case errors.Is(err, ErrCorruptContainer):
		return CodeCorrupt
	}
	return CodeInternal
}

// storeError translates store errors into the service taxonomy.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicateIdentity):
		return fmt.Errorf("%w: %w", ErrDuplicateIdentity, err)
	case errors.Is(err, store.ErrLoginAlreadyExists), errors.Is(err, store.ErrNameAlreadyExists):
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return err
}

// codecError translates container codec errors into the service taxonomy.
func codecError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, codec.ErrNotFound), errors.Is(err, codec.ErrUnreadable):
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case errors.Is(err, codec.ErrBadCredential):
		return fmt.Errorf("%w: %w", ErrBadCredential, err)
	case errors.Is(err, codec.ErrCorrupt):
		return fmt.Errorf("%w: %w", ErrCorruptContainer, err)
	case errors.Is(err, codec.ErrLockUnavailable):
		return fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	case errors.Is(err, codec.ErrFieldType), errors.Is(err, codec.ErrFieldNotWritable):
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return err
}
