// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app assembles the cache from its configuration and runs it: the
// one-shot commands share one App, and serve keeps the periodic refresh
// tasks going until the process is signalled.
//
// All Msg* constants are the human-readable texts shown for a failed
// command, one per service error code. Keeping them in one place keeps the
// wording consistent across commands.
package app

import "github.com/MKhiriev/go-psafe-cache/internal/service"

const (
	// MsgNotFound is shown when a container, entry, user or repository does
	// not exist, and also when the caller may not see it.
	MsgNotFound = "not found"

	// MsgInvalidQuery is shown when a search, batch or argument is malformed.
	MsgInvalidQuery = "invalid data provided"

	// MsgInvalidLoginPassword is shown when a login/password combination or a
	// container password is wrong.
	MsgInvalidLoginPassword = "invalid login/password"

	// MsgDuplicateIdentity is shown when a container holds two entries with
	// the same uuid and can't be cached.
	MsgDuplicateIdentity = "container holds duplicate entry identities"

	// MsgLockUnavailable is shown when another writer holds the container.
	MsgLockUnavailable = "container is busy, try again later"

	// MsgMultipleMatches is shown when a lookup expected one result.
	MsgMultipleMatches = "more than one match"

	// MsgNoStoredPassword is shown when the user's vault has no password for
	// the container. It can be set with "vault set".
	MsgNoStoredPassword = "no stored password for this container"

	// MsgCorruptContainer is shown when a file is not a readable container.
	MsgCorruptContainer = "container file is corrupt"

	// MsgCacheStale is shown when a change was saved to the container but
	// the cache could not be refreshed. Run "refresh" rather than repeating
	// the change.
	MsgCacheStale = "change saved, cache refresh failed"

	// MsgInternalError is shown for every failure the user can't resolve.
	MsgInternalError = "internal error"
)

// Message returns the text shown to the user for err.
func Message(err error) string {
	switch service.ErrorCode(err) {
	case "":
		return ""
	case service.CodeNotFound:
		return MsgNotFound
	case service.CodeInvalidQuery:
		return MsgInvalidQuery
	case service.CodeBadCredential:
		return MsgInvalidLoginPassword
	case service.CodeDuplicateIdentity:
		return MsgDuplicateIdentity
	case service.CodeLockUnavailable:
		return MsgLockUnavailable
	case service.CodeMultipleMatches:
		return MsgMultipleMatches
	case service.CodeNoStoredPassword:
		return MsgNoStoredPassword
	case service.CodeCorrupt:
		return MsgCorruptContainer
	case service.CodeCacheStale:
		return MsgCacheStale
	}
	return MsgInternalError
}
