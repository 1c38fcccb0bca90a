package store

import (
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheFixture struct {
	repos     *Repositories
	container models.Container
	snapshot  models.Snapshot
}

func newCacheFixture(t *testing.T) cacheFixture {
	t.Helper()
	ctx := testContext()
	repos := NewRepositories(newSQLiteDB(t), logger.Nop())

	repo, err := repos.RepositoryRepository.CreateRepository(ctx, models.Repository{Name: "ops", Path: t.TempDir()})
	require.NoError(t, err)
	container, err := repos.ContainerRepository.CreateContainer(ctx, models.Container{RepositoryID: repo.ID, Filename: "ops.kdbx"})
	require.NoError(t, err)

	var snapshot models.Snapshot
	err = repos.CacheRepository.WithTx(ctx, func(tx CacheTx) error {
		snapshot, err = tx.SaveSnapshot(ctx, models.Snapshot{
			ContainerID:   container.ID,
			DBName:        "Ops",
			LastRefreshed: time.Now().UTC(),
		})
		return err
	})
	require.NoError(t, err)

	return cacheFixture{repos: repos, container: container, snapshot: snapshot}
}

func TestCacheTx_EntryLifecycle(t *testing.T) {
	ctx := testContext()
	f := newCacheFixture(t)
	cache := f.repos.CacheRepository

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var entryID int64
	err := cache.WithTx(ctx, func(tx CacheTx) error {
		var err error
		entryID, err = tx.InsertEntry(ctx, f.snapshot.ID, models.Entry{
			UUID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Group: "srv.1", Title: "Logins",
			Username: "root", Password: "new", CreationTime: created,
		})
		if err != nil {
			return err
		}
		return tx.InsertHistory(ctx, entryID, models.HistoryItem{Password: "old", CreationTime: created})
	})
	require.NoError(t, err)

	err = cache.WithTx(ctx, func(tx CacheTx) error {
		entries, err := tx.ListEntries(ctx, f.snapshot.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, f.container.ID, entries[0].ContainerID)
		assert.Equal(t, "srv.1", entries[0].Group)
		assert.True(t, created.Equal(entries[0].CreationTime))
		require.Len(t, entries[0].History, 1)
		assert.Equal(t, "old", entries[0].History[0].Password)

		entries[0].Title = "Renamed"
		return tx.UpdateEntry(ctx, entries[0])
	})
	require.NoError(t, err)

	got, err := f.repos.EntryFinder.GetEntry(ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	err = cache.WithTx(ctx, func(tx CacheTx) error {
		return tx.DeleteEntries(ctx, []int64{entryID})
	})
	require.NoError(t, err)

	_, err = f.repos.EntryFinder.GetEntry(ctx, entryID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheTx_DuplicateUUIDRollsBackEverything(t *testing.T) {
	ctx := testContext()
	f := newCacheFixture(t)
	cache := f.repos.CacheRepository

	dup := models.Entry{UUID: "9b2d2a4e-0f4b-4a4e-8f5e-3c1a2b3c4d5e", Title: "a"}
	err := cache.WithTx(ctx, func(tx CacheTx) error {
		if err := tx.SetContainerUUID(ctx, f.container.ID, "c0ffee00-0000-4000-8000-000000000000"); err != nil {
			return err
		}
		if _, err := tx.InsertEntry(ctx, f.snapshot.ID, dup); err != nil {
			return err
		}
		_, err := tx.InsertEntry(ctx, f.snapshot.ID, dup)
		return err
	})
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	found, err := f.repos.EntryFinder.FindEntriesByUUID(ctx, dup.UUID)
	require.NoError(t, err)
	assert.Empty(t, found)

	container, err := f.repos.ContainerRepository.GetContainer(ctx, f.container.ID)
	require.NoError(t, err)
	assert.Empty(t, container.UUID)
}

func TestCacheRepository_SnapshotCounters(t *testing.T) {
	ctx := testContext()
	f := newCacheFixture(t)
	cache := f.repos.CacheRepository

	require.NoError(t, cache.BumpUseCount(ctx, f.container.ID))
	require.NoError(t, cache.BumpUseCount(ctx, f.container.ID))

	s, err := cache.GetSnapshot(ctx, f.container.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.UseCount)
	assert.Equal(t, "Ops", s.DBName)

	_, err = cache.GetSnapshot(ctx, f.container.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	lru, err := cache.LeastRecentlyRefreshed(ctx, 5)
	require.NoError(t, err)
	require.Len(t, lru, 1)
	assert.Equal(t, f.snapshot.ID, lru[0].ID)
}

func TestEntryFinder_FindEntries(t *testing.T) {
	ctx := testContext()
	f := newCacheFixture(t)

	seed := []models.Entry{
		{UUID: "00000000-0000-4000-8000-000000000001", Group: "srv.1", Title: "Logins", Username: "root"},
		{UUID: "00000000-0000-4000-8000-000000000002", Group: "srv.1", Title: "Logins", Username: "admin"},
		{UUID: "00000000-0000-4000-8000-000000000003", Group: "srv.2", Title: "Web", Username: "root"},
	}
	err := f.repos.CacheRepository.WithTx(ctx, func(tx CacheTx) error {
		for i, e := range seed {
			id, err := tx.InsertEntry(ctx, f.snapshot.ID, e)
			if err != nil {
				return err
			}
			if i == 0 {
				if err := tx.InsertHistory(ctx, id, models.HistoryItem{Password: "hunter2", CreationTime: time.Now()}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		include map[string][]any
		exclude map[string][]any
		want    []string
	}{
		{name: "all", want: []string{seed[0].UUID, seed[1].UUID, seed[2].UUID}},
		{name: "group in", include: map[string][]any{"Group": {"srv.1"}}, want: []string{seed[0].UUID, seed[1].UUID}},
		{name: "group not in", exclude: map[string][]any{"Group": {"srv.1"}}, want: []string{seed[2].UUID}},
		{name: "combined", include: map[string][]any{"Username": {"root"}}, exclude: map[string][]any{"Group": {"srv.2"}}, want: []string{seed[0].UUID}},
		{name: "uuid", include: map[string][]any{"UUID": {seed[1].UUID}}, want: []string{seed[1].UUID}},
		{name: "old passwords", include: map[string][]any{"Old Passwords": {"nter"}}, want: []string{seed[0].UUID}},
		{name: "nothing", include: map[string][]any{"Title": {"missing"}}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := models.ParseSearchQuery(tt.include, tt.exclude)
			require.NoError(t, err)

			got, err := f.repos.EntryFinder.FindEntries(ctx, f.container.ID, q)
			require.NoError(t, err)

			uuids := make([]string, 0, len(got))
			for _, e := range got {
				uuids = append(uuids, e.UUID)
			}
			assert.Equal(t, tt.want, uuids)
		})
	}
}

func TestRepositoryRepository_GroupsAndEnsure(t *testing.T) {
	ctx := testContext()
	repos := NewRepositories(newSQLiteDB(t), logger.Nop())

	admins, err := repos.UserRepository.CreateGroup(ctx, "admins")
	require.NoError(t, err)
	readers, err := repos.UserRepository.CreateGroup(ctx, "readers")
	require.NoError(t, err)

	require.NoError(t, repos.RepositoryRepository.EnsureRepository(ctx, models.Repository{ID: 1, Name: "personal", Path: "/p"}))
	require.NoError(t, repos.RepositoryRepository.EnsureRepository(ctx, models.Repository{ID: 1, Name: "personal", Path: "/p"}))

	created, err := repos.RepositoryRepository.CreateRepository(ctx, models.Repository{
		Name: "ops", Path: "/ops",
		AdminGroups:     []int64{admins},
		ReadAllowGroups: []int64{readers, admins},
	})
	require.NoError(t, err)
	assert.NotEqual(t, int64(1), created.ID)

	got, err := repos.RepositoryRepository.GetRepository(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{admins}, got.AdminGroups)
	assert.ElementsMatch(t, []int64{readers, admins}, got.ReadAllowGroups)
	assert.Empty(t, got.WriteDenyGroups)

	all, err := repos.RepositoryRepository.ListRepositories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repos.RepositoryRepository.CreateRepository(ctx, models.Repository{Name: "ops", Path: "/other"})
	assert.ErrorIs(t, err, ErrNameAlreadyExists)

	_, err = repos.RepositoryRepository.GetRepository(ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestContainerRepository_SQLite(t *testing.T) {
	ctx := testContext()
	repos := NewRepositories(newSQLiteDB(t), logger.Nop())

	user, err := repos.UserRepository.CreateUser(ctx, models.User{Login: "ann", PasswordHash: "x"})
	require.NoError(t, err)
	repo, err := repos.RepositoryRepository.CreateRepository(ctx, models.Repository{Name: "r", Path: "/r"})
	require.NoError(t, err)

	shared, err := repos.ContainerRepository.CreateContainer(ctx, models.Container{RepositoryID: repo.ID, Filename: "a.kdbx", UUID: "u-1"})
	require.NoError(t, err)
	owned, err := repos.ContainerRepository.CreateContainer(ctx, models.Container{RepositoryID: repo.ID, Filename: "b.kdbx", UUID: "u-1", OwnerID: &user.UserID})
	require.NoError(t, err)

	byUUID, err := repos.ContainerRepository.FindContainersByUUID(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, byUUID, 2)

	got, err := repos.ContainerRepository.FindOwnedContainer(ctx, repo.ID, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, owned.ID, got.ID)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, user.UserID, *got.OwnerID)

	require.NoError(t, repos.ContainerRepository.SetFilename(ctx, shared.ID, ""))
	got, err = repos.ContainerRepository.GetContainer(ctx, shared.ID)
	require.NoError(t, err)
	assert.True(t, got.Missing())
	assert.Nil(t, got.OwnerID)

	assert.ErrorIs(t, repos.ContainerRepository.SetFilename(ctx, 999, "x"), ErrNotFound)
}
