// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// synchronizer is the concrete implementation of Synchronizer.
//
// The whole diff of one container (uuid, header, entries, history and
// counters) is written in a single store transaction, so a failure leaves
// the previous mirror untouched.
type synchronizer struct {
	locator
	cache  store.CacheRepository
	codec  codec.Codec
	now    func() time.Time
	logger *logger.Logger
}

func NewSynchronizer(repos *store.Repositories, c codec.Codec, logger *logger.Logger) Synchronizer {
	return &synchronizer{
		locator: locator{containers: repos.ContainerRepository, repositories: repos.RepositoryRepository},
		cache:   repos.CacheRepository,
		codec:   c,
		now:     time.Now,
		logger:  logger,
	}
}

func (s *synchronizer) Synchronize(ctx context.Context, containerID int64, password string, force bool) (bool, error) {
	log := logger.FromContext(ctx)

	loc, err := s.locate(ctx, containerID)
	if err != nil {
		log.Err(err).Str("func", "*synchronizer.Synchronize").Int64("container_id", containerID).Msg("error locating container")
		return false, err
	}

	info, err := os.Stat(loc.path)
	if err != nil {
		log.Err(err).Str("func", "*synchronizer.Synchronize").Str("path", loc.path).Msg("container file is not readable")
		return false, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	modified, size := storedTime(info.ModTime()), info.Size()

	snapshot, err := s.cache.GetSnapshot(ctx, containerID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		snapshot = models.Snapshot{ContainerID: containerID}
	case err != nil:
		return false, fmt.Errorf("error loading snapshot: %w", err)
	}

	if !force && snapshot.ID != 0 && snapshot.FileLastModified.Equal(modified) && snapshot.FileLastSize == size {
		log.Debug().Int64("container_id", containerID).Msg("container unchanged, skipping")
		return false, nil
	}

	// the stat is taken before decrypting: a write landing mid-sync leaves a
	// newer mtime on disk and the next sync picks it up
	snapshot.FileLastModified = modified
	snapshot.FileLastSize = size

	h, err := s.codec.Open(ctx, loc.path, password, codec.ReadOnly)
	if err != nil {
		log.Err(err).Str("func", "*synchronizer.Synchronize").Int64("container_id", containerID).Msg("error opening container")
		return false, codecError(err)
	}

	live, err := liveEntries(h)
	if err != nil {
		log.Err(err).Str("func", "*synchronizer.Synchronize").Int64("container_id", containerID).Msg("ambiguous entry identity")
		return false, err
	}

	header := h.Header()
	snapshot.UUID = h.ContainerUUID()
	snapshot.DBName = header.Name
	snapshot.DBDescription = header.Description
	snapshot.LastSaveTime = storedTime(header.LastSaveTime)
	snapshot.LastSaveApp = header.LastSaveApp
	snapshot.LastSaveHost = header.LastSaveHost
	snapshot.LastSaveUser = header.LastSaveUser
	snapshot.DBPassword = password
	snapshot.UseCount = 0
	snapshot.LastRefreshed = storedTime(s.now())

	err = s.cache.WithTx(ctx, func(tx store.CacheTx) error {
		if loc.container.UUID != snapshot.UUID {
			if err := tx.SetContainerUUID(ctx, containerID, snapshot.UUID); err != nil {
				return err
			}
		}

		saved, err := tx.SaveSnapshot(ctx, snapshot)
		if err != nil {
			return err
		}
		return reconcileEntries(ctx, tx, saved.ID, live)
	})
	if err != nil {
		log.Err(err).Str("func", "*synchronizer.Synchronize").Int64("container_id", containerID).Msg("error writing cache")
		return false, storeError(err)
	}

	log.Info().Int64("container_id", containerID).Int("entries", len(live)).Msg("container synchronized")
	return true, nil
}

// liveEntries converts the codec entries and rejects duplicate uuids.
func liveEntries(h codec.Handle) ([]models.Entry, error) {
	entries := h.Entries()
	out := make([]models.Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if _, dup := seen[e.UUID()]; dup {
			return nil, fmt.Errorf("%w: uuid %s appears twice in %s", ErrDuplicateIdentity, e.UUID(), h.Path())
		}
		seen[e.UUID()] = struct{}{}
		out = append(out, normalizeEntry(e.Model()))
	}
	return out, nil
}

// reconcileEntries makes the cached entries of a snapshot equal to live.
// Cached rows are matched by uuid; whatever is left in remaining after the
// scan no longer exists in the container.
func reconcileEntries(ctx context.Context, tx store.CacheTx, snapshotID int64, live []models.Entry) error {
	cached, err := tx.ListEntries(ctx, snapshotID)
	if err != nil {
		return err
	}

	remaining := make(map[string]models.Entry, len(cached))
	for _, e := range cached {
		remaining[e.UUID] = e
	}

	for _, e := range live {
		old, ok := remaining[e.UUID]
		if !ok {
			id, err := tx.InsertEntry(ctx, snapshotID, e)
			if err != nil {
				return err
			}
			if err = reconcileHistory(ctx, tx, id, nil, e.History); err != nil {
				return err
			}
			continue
		}

		delete(remaining, e.UUID)
		e.ID = old.ID
		if entryChanged(old, e) {
			if err = tx.UpdateEntry(ctx, e); err != nil {
				return err
			}
		}
		if err = reconcileHistory(ctx, tx, old.ID, old.History, e.History); err != nil {
			return err
		}
	}

	gone := make([]int64, 0, len(remaining))
	for _, e := range remaining {
		gone = append(gone, e.ID)
	}
	return tx.DeleteEntries(ctx, gone)
}

// reconcileHistory inserts the history items the codec reports that are not
// cached yet and deletes cached items it no longer reports. Items are keyed
// by their (creation time, password) pair.
func reconcileHistory(ctx context.Context, tx store.CacheTx, entryID int64, cached, live []models.HistoryItem) error {
	var stale []int64
	existing := make(map[string]models.HistoryItem, len(cached))
	for _, h := range cached {
		if _, dup := existing[h.Key()]; dup {
			stale = append(stale, h.ID)
			continue
		}
		existing[h.Key()] = h
	}

	seen := make(map[string]struct{}, len(live))
	for _, h := range live {
		key := h.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := existing[key]; ok {
			continue
		}
		if err := tx.InsertHistory(ctx, entryID, h); err != nil {
			return err
		}
	}

	for key, h := range existing {
		if _, ok := seen[key]; !ok {
			stale = append(stale, h.ID)
		}
	}
	return tx.DeleteHistory(ctx, stale)
}

func entryChanged(old, cur models.Entry) bool {
	return old.Group != cur.Group ||
		old.Title != cur.Title ||
		old.Username != cur.Username ||
		old.Notes != cur.Notes ||
		old.Password != cur.Password ||
		!old.CreationTime.Equal(cur.CreationTime) ||
		!old.PasswordModTime.Equal(cur.PasswordModTime) ||
		!old.AccessTime.Equal(cur.AccessTime) ||
		!old.PasswordExpiryTime.Equal(cur.PasswordExpiryTime) ||
		!old.ModTime.Equal(cur.ModTime) ||
		old.URL != cur.URL ||
		old.AutoType != cur.AutoType ||
		old.RunCommand != cur.RunCommand ||
		old.Email != cur.Email
}

// normalizeEntry rounds times to what every supported store keeps.
func normalizeEntry(e models.Entry) models.Entry {
	e.CreationTime = storedTime(e.CreationTime)
	e.PasswordModTime = storedTime(e.PasswordModTime)
	e.AccessTime = storedTime(e.AccessTime)
	e.PasswordExpiryTime = storedTime(e.PasswordExpiryTime)
	e.ModTime = storedTime(e.ModTime)
	for i := range e.History {
		e.History[i].CreationTime = storedTime(e.History[i].CreationTime)
	}
	return e
}

// storedTime truncates to microseconds, the precision of postgres timestamps.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
