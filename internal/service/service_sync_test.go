package service

import (
	"os"
	"testing"

	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const safePassword = "shared-secret"

func findEntry(t *testing.T, h codec.Handle, uuid string) *codec.Entry {
	t.Helper()
	for _, e := range h.Entries() {
		if e.UUID() == uuid {
			return e
		}
	}
	t.Fatalf("entry %s not in container", uuid)
	return nil
}

func TestSynchronize_MirrorsContainer(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword,
		login("srv.1", "Logins", "root", "old"),
		login("srv.2", "Logins", "admin", "pw2"),
	)

	changed, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	require.NoError(t, err)
	assert.True(t, changed)

	cached := f.cached(c.ID)
	require.Len(t, cached, 2)
	assert.Equal(t, "root", cached[uuids[0]].Username)
	assert.Equal(t, "old", cached[uuids[0]].Password)
	assert.Equal(t, "srv.2", cached[uuids[1]].Group)

	snapshot, err := f.repos.CacheRepository.GetSnapshot(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ops.kdbx", snapshot.DBName)
	assert.Equal(t, safePassword, snapshot.DBPassword)
	assert.NotZero(t, snapshot.FileLastSize)
	assert.False(t, snapshot.LastRefreshed.IsZero())

	record, err := f.repos.ContainerRepository.GetContainer(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.UUID, record.UUID)
	assert.NotEmpty(t, record.UUID)
}

func TestSynchronize_UnchangedFileIsSkipped(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, _ := f.container(repo, "ops.kdbx", safePassword, login("g", "t", "u", "p"))

	_, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	require.NoError(t, err)
	before := f.cached(c.ID)

	changed, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, f.cached(c.ID))

	// force re-reads the file but keeps the row identities
	changed, err = f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, before, f.cached(c.ID))
}

func TestSynchronize_ReconcilesEdits(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword,
		login("srv.1", "Logins", "root", "old"),
		login("srv.2", "Logins", "admin", "pw2"),
	)
	_, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	require.NoError(t, err)
	before := f.cached(c.ID)

	var added string
	f.edit(f.path(c), safePassword, func(h codec.Handle) {
		require.NoError(t, findEntry(t, h, uuids[0]).Set(models.FieldPassword, str("new")))
		require.True(t, h.RemoveEntry(findEntry(t, h, uuids[1])))
		e := codec.NewEntry()
		require.NoError(t, e.Set(models.FieldTitle, str("fresh")))
		h.InsertEntry(0, e)
		added = e.UUID()
	})

	changed, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	require.NoError(t, err)
	assert.True(t, changed)

	after := f.cached(c.ID)
	require.Len(t, after, 2)
	assert.NotContains(t, after, uuids[1])

	updated := after[uuids[0]]
	assert.Equal(t, before[uuids[0]].ID, updated.ID, "updated entry keeps its row")
	assert.Equal(t, "new", updated.Password)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "old", updated.History[0].Password)

	assert.Equal(t, "fresh", after[added].Title)

	// cache equals the file after reconciliation
	live := f.live(f.path(c), safePassword)
	for uuid, e := range live {
		assert.Equal(t, e.Password, after[uuid].Password)
		assert.Equal(t, len(e.History), len(after[uuid].History))
	}
}

func TestSynchronize_ResetsUseCount(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, _ := f.container(repo, "ops.kdbx", safePassword)

	_, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	require.NoError(t, err)
	require.NoError(t, f.repos.CacheRepository.BumpUseCount(f.ctx, c.ID))

	_, err = f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, true)
	require.NoError(t, err)
	snapshot, err := f.repos.CacheRepository.GetSnapshot(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, snapshot.UseCount)
}

func TestSynchronize_Errors(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)

	t.Run("wrong password", func(t *testing.T) {
		c, _ := f.container(repo, "locked.kdbx", safePassword, login("g", "t", "u", "p"))
		_, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, "wrong", false)
		assert.ErrorIs(t, err, ErrBadCredential)

		_, err = f.repos.CacheRepository.GetSnapshot(f.ctx, c.ID)
		assert.ErrorIs(t, err, store.ErrNotFound, "nothing is cached")
	})

	t.Run("file gone", func(t *testing.T) {
		c, _ := f.container(repo, "gone.kdbx", safePassword)
		require.NoError(t, os.Remove(f.path(c)))
		_, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown container", func(t *testing.T) {
		_, err := f.svc.Synchronizer.Synchronize(f.ctx, 4242, safePassword, false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSynchronize_DuplicateUUIDLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword,
		login("g", "one", "u", "p1"),
		login("g", "two", "u", "p2"),
	)
	_, err := f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	require.NoError(t, err)
	before := f.cached(c.ID)

	f.edit(f.path(c), safePassword, func(h codec.Handle) {
		dup, ok := models.UUIDString(uuids[0])
		require.True(t, ok)
		e := findEntry(t, h, uuids[1])
		require.NoError(t, e.Set(models.FieldUUID, dup))
		require.NoError(t, e.Set(models.FieldPassword, str("changed")))
	})

	_, err = f.svc.Synchronizer.Synchronize(f.ctx, c.ID, safePassword, false)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.Equal(t, before, f.cached(c.ID))
}
