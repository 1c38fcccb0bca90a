package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/backup"
	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/internal/workers"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const personalRepoID = 1

// fixture wires the real stack: migrated sqlite, KDBX files in a temp dir
// and a worker pool.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	root  string
	repos *store.Repositories
	codec codec.Codec
	pool  *workers.Pool
	svc   *Services
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newTestCodec() codec.Codec {
	return codec.NewKDBXCodec(codec.KDBXOptions{
		AppName:        "psafecache-test",
		LockTimeout:    100 * time.Millisecond,
		LockRetryDelay: 10 * time.Millisecond,
	}, logger.Nop())
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := testContext()
	root := t.TempDir()

	db, err := store.NewConnectSQLite(ctx, config.DB{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(root, "cache.db"),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repos := store.NewRepositories(db, logger.Nop())
	c := newTestCodec()
	pool := workers.NewPool(2, logger.Nop())
	t.Cleanup(pool.Close)

	svc := NewServices(repos, c, backup.Nop(), pool, config.App{
		Name:                   "psafecache-test",
		PersonalRepositoryID:   personalRepoID,
		PersonalRepositoryPath: filepath.Join(root, "personal"),
	}, logger.Nop())
	svc.UserService.(*userService).hashCost = bcrypt.MinCost

	return &fixture{t: t, ctx: ctx, root: root, repos: repos, codec: c, pool: pool, svc: svc}
}

// user registers login with password and the given groups.
func (f *fixture) user(login, password string, groups ...string) models.User {
	f.t.Helper()
	u, err := f.svc.UserService.RegisterUser(f.ctx, models.User{Login: login, Name: login}, password)
	require.NoError(f.t, err)
	for _, g := range groups {
		require.NoError(f.t, f.svc.UserService.AddToGroup(f.ctx, u.UserID, g))
	}
	u, err = f.repos.UserRepository.FindUserByID(f.ctx, u.UserID)
	require.NoError(f.t, err)
	return u
}

// repository creates a repository readable and writable by group members.
func (f *fixture) repository(name string, groups map[models.GroupRelation][]string) models.Repository {
	f.t.Helper()
	repo, err := f.svc.RepositoryService.Create(f.ctx, models.Repository{
		Name: name,
		Path: filepath.Join(f.root, name),
	}, groups)
	require.NoError(f.t, err)
	return repo
}

type entrySpec map[models.Field]models.Value

// container writes a container file holding entries and records it.
func (f *fixture) container(repo models.Repository, filename, password string, entries ...entrySpec) (models.Container, []string) {
	f.t.Helper()
	path := filepath.Join(repo.Path, filename)
	h, err := f.codec.Create(f.ctx, path, password, models.Header{Name: filename})
	require.NoError(f.t, err)

	uuids := make([]string, 0, len(entries))
	for i, spec := range entries {
		e := codec.NewEntry()
		for field, v := range spec {
			require.NoError(f.t, e.Set(field, v))
		}
		h.InsertEntry(i, e)
		uuids = append(uuids, e.UUID())
	}
	require.NoError(f.t, h.Save(f.ctx))

	c, err := f.repos.ContainerRepository.CreateContainer(f.ctx, models.Container{
		RepositoryID: repo.ID,
		Filename:     filename,
	})
	require.NoError(f.t, err)
	return c, uuids
}

// edit opens the container file read-write and saves it after fn.
func (f *fixture) edit(path, password string, fn func(h codec.Handle)) {
	f.t.Helper()
	h, err := f.codec.Open(f.ctx, path, password, codec.ReadWrite)
	require.NoError(f.t, err)
	fn(h)
	require.NoError(f.t, h.Save(f.ctx))
}

// live returns the entries of the file as models keyed by uuid.
func (f *fixture) live(path, password string) map[string]models.Entry {
	f.t.Helper()
	h, err := f.codec.Open(f.ctx, path, password, codec.ReadOnly)
	require.NoError(f.t, err)
	out := map[string]models.Entry{}
	for _, e := range h.Entries() {
		out[e.UUID()] = e.Model()
	}
	return out
}

// cached returns the cached entries of a container keyed by uuid.
func (f *fixture) cached(containerID int64) map[string]models.Entry {
	f.t.Helper()
	entries, err := f.repos.EntryFinder.FindEntries(f.ctx, containerID, models.SearchQuery{})
	require.NoError(f.t, err)
	out := map[string]models.Entry{}
	for _, e := range entries {
		out[e.UUID] = e
	}
	return out
}

func (f *fixture) path(c models.Container) string {
	f.t.Helper()
	repo, err := f.repos.RepositoryRepository.GetRepository(f.ctx, c.RepositoryID)
	require.NoError(f.t, err)
	return c.FullPath(repo)
}

func str(s string) models.Value { return models.StringValue(s) }

func login(group, title, username, password string) entrySpec {
	return entrySpec{
		models.FieldGroup:    str(group),
		models.FieldTitle:    str(title),
		models.FieldUsername: str(username),
		models.FieldPassword: str(password),
	}
}

const (
	alicePassword = "alice-pw"
	bobPassword   = "bob-pw"
)

// team is alice (member of ops) and bob (no groups) around one shared
// container in a repository ops can read and write.
type team struct {
	alice, bob models.User
	repo       models.Repository
	container  models.Container
	uuids      []string
}

func (f *fixture) team() team {
	f.t.Helper()
	tm := team{
		alice: f.user("alice", alicePassword, "ops"),
		bob:   f.user("bob", bobPassword),
	}
	tm.repo = f.repository("ops", map[models.GroupRelation][]string{
		models.RelationReadAllow:  {"ops"},
		models.RelationWriteAllow: {"ops"},
	})
	tm.container, tm.uuids = f.container(tm.repo, "ops.kdbx", safePassword,
		login("srv.1", "Logins", "root", "old"),
		login("srv.2", "Logins", "admin", "pw2"),
	)
	return tm
}
