package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSynchronizer stands in for the cache refresh after a mutation.
type stubSynchronizer struct {
	changed bool
	err     error
	calls   int
}

func (s *stubSynchronizer) Synchronize(_ context.Context, _ int64, _ string, _ bool) (bool, error) {
	s.calls++
	return s.changed, s.err
}

type recordingBackuper struct {
	paths []string
	err   error
}

func (b *recordingBackuper) Backup(_ context.Context, _ int64, filePath string) error {
	b.paths = append(b.paths, filePath)
	return b.err
}

func update(filter models.Filter, changes ...models.Change) models.Action {
	return models.Action{Kind: models.ActionUpdate, ValueFilters: []models.Filter{filter}, Changes: changes}
}

func set(field models.Field, v string) models.Change {
	return models.Change{Field: field, Value: str(v)}
}

func where(field models.Field, v string) models.Filter {
	return models.Filter{Field: field, Value: str(v)}
}

func TestApply_UpdatePassword(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword,
		login("srv.1", "Logins", "root", "old"),
		login("srv.1", "Logins", "admin", "keep"),
	)

	result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{
		OnError:      models.OnErrorFail,
		RefreshCache: true,
		Actions: []models.Action{
			update(where(models.FieldUsername, "root"), set(models.FieldPassword, "new")),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChangeCount)
	assert.Empty(t, result.Errors)

	live := f.live(f.path(c), safePassword)
	assert.Equal(t, "new", live[uuids[0]].Password)
	require.Len(t, live[uuids[0]].History, 1)
	assert.Equal(t, "old", live[uuids[0]].History[0].Password)
	assert.Equal(t, "keep", live[uuids[1]].Password)

	cached := f.cached(c.ID)
	assert.Equal(t, "new", cached[uuids[0]].Password)
	require.Len(t, cached[uuids[0]].History, 1)
	assert.Equal(t, "old", cached[uuids[0]].History[0].Password)
}

func TestApply_UpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword, login("g", "t", "root", "old"))

	batch := models.Batch{Actions: []models.Action{
		update(where(models.FieldUsername, "root"), set(models.FieldPassword, "new")),
	}}
	for range 2 {
		result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, batch)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ChangeCount)
	}

	live := f.live(f.path(c), safePassword)
	assert.Equal(t, "new", live[uuids[0]].Password)
	assert.Len(t, live[uuids[0]].History, 1)
}

func TestApply_AddOrUpdate(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, _ := f.container(repo, "ops.kdbx", safePassword,
		login("web", "a", "u1", "p1"),
		login("web", "b", "u2", "p2"),
	)

	t.Run("no match adds one entry", func(t *testing.T) {
		result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{Actions: []models.Action{{
			Kind:         models.ActionAddOrUpdate,
			ValueFilters: []models.Filter{where(models.FieldGroup, "db")},
			Changes:      []models.Change{set(models.FieldGroup, "db"), set(models.FieldPassword, "dbpw")},
		}}})
		require.NoError(t, err)
		assert.Equal(t, 1, result.ChangeCount)
		require.Len(t, result.NewEntries, 1)

		live := f.live(f.path(c), safePassword)
		assert.Len(t, live, 3)
		assert.Equal(t, "dbpw", live[result.NewEntries[0]].Password)
	})

	t.Run("matches update every hit", func(t *testing.T) {
		result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{Actions: []models.Action{{
			Kind:         models.ActionAddOrUpdate,
			ValueFilters: []models.Filter{where(models.FieldGroup, "web")},
			Changes:      []models.Change{set(models.FieldNotes, "rotated")},
		}}})
		require.NoError(t, err)
		assert.Equal(t, 2, result.ChangeCount)
		assert.Empty(t, result.NewEntries)

		notes := 0
		for _, e := range f.live(f.path(c), safePassword) {
			if e.Notes == "rotated" {
				notes++
			}
		}
		assert.Equal(t, 2, notes)
	})
}

func TestApply_MaxMatchesFollowsContainerOrder(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword,
		login("g", "1", "u", "p"),
		login("g", "2", "u", "p"),
		login("g", "3", "u", "p"),
	)

	action := update(where(models.FieldGroup, "g"), set(models.FieldNotes, "hit"))
	action.MaxMatches = 2
	result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{Actions: []models.Action{action}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChangeCount)

	live := f.live(f.path(c), safePassword)
	assert.Equal(t, "hit", live[uuids[0]].Notes)
	assert.Equal(t, "hit", live[uuids[1]].Notes)
	assert.Equal(t, "", live[uuids[2]].Notes)
}

func TestApply_DeleteByRegex(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword,
		login("g", "web-1", "u", "p"),
		login("g", "db-1", "u", "p"),
		login("g", "web-2", "u", "p"),
	)

	result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{
		RefreshCache: true,
		Actions: []models.Action{{
			Kind:         models.ActionDelete,
			RegexFilters: []models.RegexFilter{{Field: models.FieldTitle, Pattern: regexp.MustCompile(`^web-`)}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChangeCount)

	cached := f.cached(c.ID)
	require.Len(t, cached, 1)
	assert.Contains(t, cached, uuids[1])
}

func TestApply_OldPasswordFilters(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword,
		login("g", "web", "root", "hunter2"),
		login("g", "db", "root", "letmein"),
		login("g", "mail", "root", "other"),
	)

	_, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{Actions: []models.Action{
		update(where(models.FieldTitle, "web"), set(models.FieldPassword, "rotated-1")),
		update(where(models.FieldTitle, "db"), set(models.FieldPassword, "rotated-2")),
	}})
	require.NoError(t, err)

	result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{Actions: []models.Action{
		update(where(models.FieldOldPasswords, "unter"), set(models.FieldNotes, "leaked")),
		{
			Kind:         models.ActionUpdate,
			RegexFilters: []models.RegexFilter{{Field: models.FieldOldPasswords, Pattern: regexp.MustCompile(`^let`)}},
			Changes:      []models.Change{set(models.FieldNotes, "weak")},
		},
		update(where(models.FieldOldPasswords, "other"), set(models.FieldNotes, "never")),
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChangeCount)

	live := f.live(f.path(c), safePassword)
	assert.Equal(t, "leaked", live[uuids[0]].Notes)
	assert.Equal(t, "weak", live[uuids[1]].Notes)
	assert.Equal(t, "", live[uuids[2]].Notes)
}

func TestApply_ErrorPolicy(t *testing.T) {
	bad := models.Action{
		Kind:         models.ActionKind("rename"),
		ValueFilters: []models.Filter{where(models.FieldTitle, "t")},
	}
	actions := func() []models.Action {
		return []models.Action{
			update(where(models.FieldUsername, "root"), set(models.FieldPassword, "new")),
			bad,
			{Kind: models.ActionAdd, Changes: []models.Change{set(models.FieldTitle, "added")}},
		}
	}

	t.Run("fail aborts and saves nothing", func(t *testing.T) {
		f := newFixture(t)
		repo := f.repository("ops", nil)
		c, uuids := f.container(repo, "ops.kdbx", safePassword, login("g", "t", "root", "old"))

		_, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{
			OnError: models.OnErrorFail,
			Actions: actions(),
		})
		assert.ErrorIs(t, err, ErrInvalidQuery)

		live := f.live(f.path(c), safePassword)
		assert.Len(t, live, 1)
		assert.Equal(t, "old", live[uuids[0]].Password)
	})

	t.Run("skip keeps going", func(t *testing.T) {
		f := newFixture(t)
		repo := f.repository("ops", nil)
		c, uuids := f.container(repo, "ops.kdbx", safePassword, login("g", "t", "root", "old"))

		result, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{
			OnError: models.OnErrorSkip,
			Actions: actions(),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.ChangeCount)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 1, result.Errors[0].Index)
		assert.Equal(t, models.ActionKind("rename"), result.Errors[0].Kind)
		assert.ErrorIs(t, result.Errors[0].Reason, ErrInvalidQuery)

		live := f.live(f.path(c), safePassword)
		assert.Len(t, live, 2)
		assert.Equal(t, "new", live[uuids[0]].Password)
	})
}

func TestApply_LockUnavailable(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword, login("g", "t", "root", "old"))

	err := codec.WithLock(f.ctx, f.codec.Locker(f.path(c)), func() error {
		_, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, safePassword, models.Batch{Actions: []models.Action{
			update(where(models.FieldUsername, "root"), set(models.FieldPassword, "new")),
		}})
		return err
	})
	assert.ErrorIs(t, err, ErrLockUnavailable)
	assert.Equal(t, "old", f.live(f.path(c), safePassword)[uuids[0]].Password)
}

func TestApply_WrongPassword(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, _ := f.container(repo, "ops.kdbx", safePassword)

	_, err := f.svc.MutationEngine.Apply(f.ctx, c.ID, "wrong", models.Batch{})
	assert.ErrorIs(t, err, ErrBadCredential)
}

func TestApply_BackupRunsBeforeSave(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword, login("g", "t", "root", "old"))
	batch := models.Batch{Actions: []models.Action{
		update(where(models.FieldUsername, "root"), set(models.FieldPassword, "new")),
	}}

	failing := &recordingBackuper{err: errors.New("bucket gone")}
	engine := NewMutationEngine(f.repos, f.codec, failing, &stubSynchronizer{changed: true}, logger.Nop())
	_, err := engine.Apply(f.ctx, c.ID, safePassword, batch)
	require.Error(t, err)
	assert.Equal(t, []string{f.path(c)}, failing.paths)
	assert.Equal(t, "old", f.live(f.path(c), safePassword)[uuids[0]].Password)

	ok := &recordingBackuper{}
	engine = NewMutationEngine(f.repos, f.codec, ok, &stubSynchronizer{changed: true}, logger.Nop())
	_, err = engine.Apply(f.ctx, c.ID, safePassword, batch)
	require.NoError(t, err)
	assert.Len(t, ok.paths, 1)
	assert.Equal(t, "new", f.live(f.path(c), safePassword)[uuids[0]].Password)
}

func TestApply_CacheStale(t *testing.T) {
	f := newFixture(t)
	repo := f.repository("ops", nil)
	c, uuids := f.container(repo, "ops.kdbx", safePassword, login("g", "t", "root", "old"))
	batch := models.Batch{
		RefreshCache: true,
		Actions: []models.Action{
			update(where(models.FieldUsername, "root"), set(models.FieldPassword, "new")),
		},
	}

	tests := []struct {
		name string
		sync *stubSynchronizer
	}{
		{name: "refresh failed", sync: &stubSynchronizer{err: errors.New("db down")}},
		{name: "refresh saw no change", sync: &stubSynchronizer{changed: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewMutationEngine(f.repos, f.codec, &recordingBackuper{}, tt.sync, logger.Nop())
			result, err := engine.Apply(f.ctx, c.ID, safePassword, batch)
			assert.ErrorIs(t, err, ErrCacheStale)
			assert.Equal(t, 1, result.ChangeCount, "the mutation itself landed")
			assert.Equal(t, 1, tt.sync.calls)
			assert.Equal(t, "new", f.live(f.path(c), safePassword)[uuids[0]].Password)
		})
	}
}
