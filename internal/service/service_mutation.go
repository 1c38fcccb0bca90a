// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-psafe-cache/internal/backup"
	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// mutationEngine is the concrete implementation of MutationEngine.
type mutationEngine struct {
	locator
	codec        codec.Codec
	backuper     backup.Backuper
	synchronizer Synchronizer
	logger       *logger.Logger
}

func NewMutationEngine(repos *store.Repositories, c codec.Codec, backuper backup.Backuper, synchronizer Synchronizer, logger *logger.Logger) MutationEngine {
	return &mutationEngine{
		locator:      locator{containers: repos.ContainerRepository, repositories: repos.RepositoryRepository},
		codec:        c,
		backuper:     backuper,
		synchronizer: synchronizer,
		logger:       logger,
	}
}

// Apply runs batch against the container.
//
// The container lock is held from before the file is read until after it is
// saved. With OnErrorFail the first failing action aborts the batch and
// nothing is saved; with OnErrorSkip failures are collected and the
// remaining actions still run. The file is backed up right before the save.
//
// When batch.RefreshCache is set the cache is force-synchronized afterwards.
// A failure there is reported as ErrCacheStale: the data is on disk.
func (m *mutationEngine) Apply(ctx context.Context, containerID int64, password string, batch models.Batch) (models.MutationResult, error) {
	log := logger.FromContext(ctx)

	loc, err := m.locate(ctx, containerID)
	if err != nil {
		log.Err(err).Str("func", "*mutationEngine.Apply").Int64("container_id", containerID).Msg("error locating container")
		return models.MutationResult{}, err
	}

	result := models.MutationResult{Errors: []models.ActionError{}}
	err = codec.WithLock(ctx, m.codec.Locker(loc.path), func() error {
		h, err := m.codec.Open(ctx, loc.path, password, codec.ReadWrite)
		if err != nil {
			return err
		}

		for i, action := range batch.Actions {
			changed, created, err := applyAction(h, action)
			if err != nil {
				if batch.OnError != models.OnErrorSkip {
					return fmt.Errorf("action %d (%s): %w", i, action.Kind, err)
				}
				log.Warn().Err(err).Int64("container_id", containerID).Int("action", i).Msg("skipping failed action")
				result.Errors = append(result.Errors, models.ActionError{
					Index:  i,
					Kind:   action.Kind,
					Error:  err.Error(),
					Reason: err,
				})
				continue
			}
			result.ChangeCount += changed
			if created != "" {
				result.NewEntries = append(result.NewEntries, created)
			}
		}

		if err = m.backuper.Backup(ctx, containerID, loc.path); err != nil {
			return err
		}
		return h.Save(ctx)
	})
	if err != nil {
		log.Err(err).Str("func", "*mutationEngine.Apply").Int64("container_id", containerID).Msg("batch not applied")
		return models.MutationResult{}, codecError(err)
	}

	log.Info().Int64("container_id", containerID).Int("changes", result.ChangeCount).
		Int("errors", len(result.Errors)).Msg("batch applied")

	if batch.RefreshCache {
		changed, err := m.synchronizer.Synchronize(ctx, containerID, password, true)
		if err != nil {
			return result, fmt.Errorf("%w: %w", ErrCacheStale, err)
		}
		if !changed {
			return result, fmt.Errorf("%w: forced refresh reported no change", ErrCacheStale)
		}
	}
	return result, nil
}

// applyAction runs one action against the live entries. It returns the
// number of entries acted upon and the uuid of a created entry.
func applyAction(h codec.Handle, action models.Action) (int, string, error) {
	if err := validateAction(action); err != nil {
		return 0, "", err
	}

	switch action.Kind {
	case models.ActionAdd:
		uuid, err := addEntry(h, action.Changes)
		if err != nil {
			return 0, "", err
		}
		return 1, uuid, nil

	case models.ActionUpdate:
		n, err := updateEntries(matchEntries(h.Entries(), action), action.Changes)
		return n, "", err

	case models.ActionDelete:
		n := 0
		for _, e := range matchEntries(h.Entries(), action) {
			if h.RemoveEntry(e) {
				n++
			}
		}
		return n, "", nil

	case models.ActionAddOrUpdate:
		n, err := updateEntries(matchEntries(h.Entries(), action), action.Changes)
		if err != nil || n > 0 {
			return n, "", err
		}
		uuid, err := addEntry(h, action.Changes)
		if err != nil {
			return 0, "", err
		}
		return 1, uuid, nil
	}
	return 0, "", fmt.Errorf("%w: unknown action %q", ErrInvalidQuery, action.Kind)
}

// addEntry puts a new entry at the top of the container.
func addEntry(h codec.Handle, changes []models.Change) (string, error) {
	e := codec.NewEntry()
	if err := setAll(e, changes); err != nil {
		return "", err
	}
	h.InsertEntry(0, e)
	return e.UUID(), nil
}

func updateEntries(entries []*codec.Entry, changes []models.Change) (int, error) {
	for _, e := range entries {
		if err := setAll(e, changes); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

func setAll(e *codec.Entry, changes []models.Change) error {
	for _, c := range changes {
		if err := e.Set(c.Field, c.Value); err != nil {
			return codecError(err)
		}
	}
	return nil
}

// matchEntries returns the entries matching every filter of action in
// container order, capped at action.MaxMatches.
func matchEntries(entries []*codec.Entry, action models.Action) []*codec.Entry {
	var matched []*codec.Entry
	for _, e := range entries {
		if action.MaxMatches > 0 && len(matched) == action.MaxMatches {
			break
		}
		if matches(e, action) {
			matched = append(matched, e)
		}
	}
	return matched
}

func matches(e *codec.Entry, action models.Action) bool {
	for _, f := range action.ValueFilters {
		if f.Field == models.FieldOldPasswords {
			if !anyHistory(e, func(p string) bool { return strings.Contains(p, f.Value.String()) }) {
				return false
			}
			continue
		}
		v, ok := e.Get(f.Field)
		if !ok || !v.Equal(f.Value) {
			return false
		}
	}
	for _, f := range action.RegexFilters {
		if f.Field == models.FieldOldPasswords {
			if !anyHistory(e, f.Pattern.MatchString) {
				return false
			}
			continue
		}
		v, ok := e.Get(f.Field)
		if !ok || !f.Pattern.MatchString(v.String()) {
			return false
		}
	}
	return true
}

func anyHistory(e *codec.Entry, match func(string) bool) bool {
	for _, item := range e.History() {
		if match(item.Password) {
			return true
		}
	}
	return false
}

// validateAction rejects actions that bypassed models.ParseAction with
// unusable filters or changes.
func validateAction(action models.Action) error {
	switch action.Kind {
	case models.ActionAdd:
		if len(action.ValueFilters) > 0 || len(action.RegexFilters) > 0 {
			return fmt.Errorf("%w: add takes no filters", ErrInvalidQuery)
		}
	case models.ActionUpdate, models.ActionAddOrUpdate:
		if len(action.Changes) == 0 {
			return fmt.Errorf("%w: %s needs changes", ErrInvalidQuery, action.Kind)
		}
	case models.ActionDelete:
		if len(action.Changes) > 0 {
			return fmt.Errorf("%w: delete takes no changes", ErrInvalidQuery)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidQuery, action.Kind)
	}
	if action.MaxMatches < 0 {
		return fmt.Errorf("%w: negative maxMatches", ErrInvalidQuery)
	}

	for _, f := range action.ValueFilters {
		if !f.Field.Valid() || f.Value.Kind() != f.Field.Kind() {
			return fmt.Errorf("%w: bad value filter on %s", ErrInvalidQuery, f.Field)
		}
	}
	for _, f := range action.RegexFilters {
		if !f.Field.Valid() || f.Pattern == nil {
			return fmt.Errorf("%w: bad regex filter on %s", ErrInvalidQuery, f.Field)
		}
	}
	for _, c := range action.Changes {
		if !c.Field.Writable() || c.Value.Kind() != c.Field.Kind() {
			return fmt.Errorf("%w: bad change of %s", ErrInvalidQuery, c.Field)
		}
	}
	return nil
}
