// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package access decides whether a user may use a repository in a given mode.
//
// Decisions are never cached: group membership can change between calls, so
// callers evaluate on every operation.
package access

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/models"
)

// ErrInvalidMode is returned for a mode outside R, RW and A. It signals a
// caller bug and is not meant for end users.
var ErrInvalidMode = errors.New("invalid access mode")

// Evaluator holds the identifier of the reserved personal-vault repository,
// which no user may reach through the normal permission path.
type Evaluator struct {
	personalRepositoryID int64
}

// NewEvaluator builds an Evaluator for the given personal-vault repository id.
func NewEvaluator(personalRepositoryID int64) *Evaluator {
	return &Evaluator{personalRepositoryID: personalRepositoryID}
}

// PersonalRepositoryID returns the reserved repository id.
func (e *Evaluator) PersonalRepositoryID() int64 {
	return e.personalRepositoryID
}

// CanAccess reports whether user may use repo in mode.
func (e *Evaluator) CanAccess(user models.User, repo models.Repository, mode models.AccessMode) (bool, error) {
	switch mode {
	case models.ModeRead, models.ModeReadWrite, models.ModeAdmin:
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	// the personal vault repository is closed to superusers too
	if repo.ID == e.personalRepositoryID {
		return false, nil
	}
	if user.IsSuperuser {
		return true, nil
	}

	admin := user.InGroup(repo.AdminGroups)
	switch mode {
	case models.ModeAdmin:
		return admin, nil
	case models.ModeRead:
		return admin || canRead(user, repo), nil
	default:
		return admin || (canRead(user, repo) && canWrite(user, repo)), nil
	}
}

func canRead(user models.User, repo models.Repository) bool {
	return !user.InGroup(repo.ReadDenyGroups) && user.InGroup(repo.ReadAllowGroups)
}

func canWrite(user models.User, repo models.Repository) bool {
	return !user.InGroup(repo.WriteDenyGroups) && user.InGroup(repo.WriteAllowGroups)
}
