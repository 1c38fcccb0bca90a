package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrAccessDenied, want: CodeNotFound},
		{err: fmt.Errorf("wrapped: %w", ErrNotFound), want: CodeNotFound},
		{err: ErrInvalidQuery, want: CodeInvalidQuery},
		{err: ErrInvalidDataProvided, want: CodeInvalidQuery},
		{err: ErrBadCredential, want: CodeBadCredential},
		{err: ErrDuplicateIdentity, want: CodeDuplicateIdentity},
		{err: ErrLockUnavailable, want: CodeLockUnavailable},
		{err: ErrMultipleMatches, want: CodeMultipleMatches},
		{err: ErrNoStoredPassword, want: CodeNoStoredPassword},
		{err: ErrCorruptContainer, want: CodeCorrupt},
		{err: fmt.Errorf("%w: %w", ErrCacheStale, ErrAccessDenied), want: CodeCacheStale},
		{err: fmt.Errorf("action 0: %w", models.ErrInvalidAction), want: CodeInvalidQuery},
		{err: ErrInvalidMode, want: CodeInternal},
		{err: errors.New("disk on fire"), want: CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), "%v", tt.err)
	}
}

func TestErrorTranslation(t *testing.T) {
	assert.ErrorIs(t, storeError(store.ErrNotFound), ErrNotFound)
	assert.ErrorIs(t, storeError(store.ErrNameAlreadyExists), ErrInvalidDataProvided)
	assert.NoError(t, storeError(nil))

	assert.ErrorIs(t, codecError(codec.ErrNotFound), ErrAccessDenied)
	assert.ErrorIs(t, codecError(codec.ErrBadCredential), ErrBadCredential)
	assert.ErrorIs(t, codecError(codec.ErrCorrupt), ErrCorruptContainer)
	assert.ErrorIs(t, codecError(codec.ErrLockUnavailable), ErrLockUnavailable)
	assert.ErrorIs(t, codecError(codec.ErrFieldNotWritable), ErrInvalidQuery)
}
