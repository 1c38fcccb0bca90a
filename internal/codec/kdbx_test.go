package codec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
)

const testPassword = "s3cret"

func newTestCodec() Codec {
	return NewKDBXCodec(KDBXOptions{
		AppName:        "psafecache-test",
		LockTimeout:    200 * time.Millisecond,
		LockRetryDelay: 10 * time.Millisecond,
	}, logger.Nop())
}

func createContainer(t *testing.T, c Codec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "safe.kdbx")
	_, err := c.Create(context.Background(), path, testPassword, models.Header{
		Name:        "Ops",
		Description: "ops passwords",
	})
	require.NoError(t, err)
	return path
}

func setAll(t *testing.T, e *Entry, changes map[models.Field]models.Value) {
	t.Helper()
	for f, v := range changes {
		require.NoError(t, e.Set(f, v))
	}
}

func TestKDBX_CreateAndOpen(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)

	h, err := c.Open(context.Background(), path, testPassword, ReadOnly)
	require.NoError(t, err)

	assert.Equal(t, "Ops", h.Header().Name)
	assert.Equal(t, "ops passwords", h.Header().Description)
	assert.Equal(t, "psafecache-test", h.Header().LastSaveApp)
	assert.False(t, h.Header().LastSaveTime.IsZero())
	assert.NotEmpty(t, h.ContainerUUID())
	assert.Empty(t, h.Entries())
}

func TestKDBX_Create_FailsWhenFileExists(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)

	_, err := c.Create(context.Background(), path, testPassword, models.Header{})
	assert.ErrorIs(t, err, ErrExists)
}

func TestKDBX_SaveRoundTrip(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)
	ctx := context.Background()

	h, err := c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)

	expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewEntry()
	setAll(t, e, map[models.Field]models.Value{
		models.FieldGroup:          models.StringValue("srv.1"),
		models.FieldTitle:          models.StringValue("Logins"),
		models.FieldUsername:       models.StringValue("root"),
		models.FieldPassword:       models.StringValue("old"),
		models.FieldURL:            models.StringValue("ssh://srv1"),
		models.FieldEmail:          models.StringValue("root@srv1"),
		models.FieldAutoType:       models.StringValue("{USERNAME}{TAB}{PASSWORD}"),
		models.FieldRunCommand:     models.StringValue("ssh root@srv1"),
		models.FieldNotes:          models.StringValue("primary"),
		models.FieldPasswordExpiry: models.TimeValue(expiry),
	})
	h.InsertEntry(0, e)
	root := NewEntry()
	setAll(t, root, map[models.Field]models.Value{models.FieldTitle: models.StringValue("top")})
	h.InsertEntry(1, root)
	require.NoError(t, h.Save(ctx))

	reopened, err := c.Open(ctx, path, testPassword, ReadOnly)
	require.NoError(t, err)
	require.Len(t, reopened.Entries(), 2)
	assert.Equal(t, h.ContainerUUID(), reopened.ContainerUUID())

	byUUID := map[string]models.Entry{}
	for _, ent := range reopened.Entries() {
		byUUID[ent.UUID()] = ent.Model()
	}

	got := byUUID[e.UUID()]
	assert.Equal(t, "srv.1", got.Group)
	assert.Equal(t, "Logins", got.Title)
	assert.Equal(t, "root", got.Username)
	assert.Equal(t, "old", got.Password)
	assert.Equal(t, "ssh://srv1", got.URL)
	assert.Equal(t, "root@srv1", got.Email)
	assert.Equal(t, "{USERNAME}{TAB}{PASSWORD}", got.AutoType)
	assert.Equal(t, "ssh root@srv1", got.RunCommand)
	assert.Equal(t, "primary", got.Notes)
	assert.True(t, expiry.Equal(got.PasswordExpiryTime))
	assert.Empty(t, got.History)

	assert.Equal(t, "", byUUID[root.UUID()].Group)
}

func TestKDBX_PasswordChangeKeepsHistory(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)
	ctx := context.Background()

	h, err := c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	e := NewEntry()
	require.NoError(t, e.Set(models.FieldPassword, models.StringValue("old")))
	h.InsertEntry(0, e)
	require.NoError(t, h.Save(ctx))

	h, err = c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	require.Len(t, h.Entries(), 1)
	require.NoError(t, h.Entries()[0].Set(models.FieldPassword, models.StringValue("new")))
	require.NoError(t, h.Save(ctx))

	h, err = c.Open(ctx, path, testPassword, ReadOnly)
	require.NoError(t, err)
	got := h.Entries()[0].Model()
	assert.Equal(t, "new", got.Password)
	require.Len(t, got.History, 1)
	assert.Equal(t, "old", got.History[0].Password)
}

func TestKDBX_SaveKeepsNativeHistory(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)
	ctx := context.Background()

	h, err := c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	e := NewEntry()
	setAll(t, e, map[models.Field]models.Value{
		models.FieldTitle:    models.StringValue("db"),
		models.FieldUsername: models.StringValue("olduser"),
		models.FieldPassword: models.StringValue("p1"),
	})
	h.InsertEntry(0, e)
	require.NoError(t, h.Save(ctx))

	h, err = c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	setAll(t, h.Entries()[0], map[models.Field]models.Value{
		models.FieldUsername: models.StringValue("newuser"),
		models.FieldPassword: models.StringValue("p2"),
	})
	require.NoError(t, h.Save(ctx))

	// untouched save
	h, err = c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, h.Save(ctx))

	raw := decodeRaw(t, path)
	require.Len(t, raw.Histories, 1)
	require.Len(t, raw.Histories[0].Entries, 1)
	old := raw.Histories[0].Entries[0]
	assert.Equal(t, "olduser", old.GetContent("UserName"))
	assert.Equal(t, "db", old.GetContent("Title"))
	assert.Equal(t, "p1", old.GetContent("Password"))
	assert.Equal(t, "newuser", raw.GetContent("UserName"))

	h, err = c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, h.Entries()[0].Set(models.FieldPassword, models.StringValue("p3")))
	require.NoError(t, h.Save(ctx))

	raw = decodeRaw(t, path)
	require.Len(t, raw.Histories[0].Entries, 2)
	assert.Equal(t, "olduser", raw.Histories[0].Entries[0].GetContent("UserName"))
	assert.Equal(t, "newuser", raw.Histories[0].Entries[1].GetContent("UserName"))
	assert.Equal(t, "p2", raw.Histories[0].Entries[1].GetContent("Password"))
}

// decodeRaw reads the single entry of a container with the KeePass library
// directly.
func decodeRaw(t *testing.T, path string) gokeepasslib.Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(testPassword)
	require.NoError(t, gokeepasslib.NewDecoder(f).Decode(db))
	require.NoError(t, db.UnlockProtectedEntries())
	require.Len(t, db.Content.Root.Groups[0].Entries, 1)
	return db.Content.Root.Groups[0].Entries[0]
}

func TestKDBX_RemoveEntry(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)
	ctx := context.Background()

	h, err := c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	a, b := NewEntry(), NewEntry()
	h.InsertEntry(0, a)
	h.InsertEntry(0, b)
	assert.Equal(t, []*Entry{b, a}, h.Entries())

	assert.True(t, h.RemoveEntry(b))
	assert.False(t, h.RemoveEntry(b))
	require.NoError(t, h.Save(ctx))

	h, err = c.Open(ctx, path, testPassword, ReadOnly)
	require.NoError(t, err)
	require.Len(t, h.Entries(), 1)
	assert.Equal(t, a.UUID(), h.Entries()[0].UUID())
}

func TestKDBX_OpenErrors(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)

	garbage := filepath.Join(t.TempDir(), "garbage.kdbx")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a keepass file"), 0o600))

	truncated := damagedCopy(t, path, func(data []byte) []byte { return data[:len(data)-5] })
	flipped := damagedCopy(t, path, func(data []byte) []byte {
		data[len(data)/2] ^= 0xFF
		return data
	})

	tests := []struct {
		name     string
		path     string
		password string
		want     error
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.kdbx"), password: testPassword, want: ErrNotFound},
		{name: "wrong password", path: path, password: "wrong", want: ErrBadCredential},
		{name: "not a container", path: garbage, password: testPassword, want: ErrCorrupt},
		{name: "truncated payload", path: truncated, password: testPassword, want: ErrCorrupt},
		{name: "flipped payload byte", path: flipped, password: testPassword, want: ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = c.Open(context.Background(), tt.path, tt.password, ReadOnly)
			})
			assert.ErrorIs(t, err, tt.want)
			if tt.want == ErrCorrupt {
				assert.NotErrorIs(t, err, ErrBadCredential)
			}
		})
	}
}

// damagedCopy writes a copy of a populated container with its bytes
// passed through damage.
func damagedCopy(t *testing.T, src string, damage func([]byte) []byte) string {
	t.Helper()
	c := newTestCodec()
	ctx := context.Background()

	orig, err := os.ReadFile(src)
	require.NoError(t, err)
	work := filepath.Join(t.TempDir(), "work.kdbx")
	require.NoError(t, os.WriteFile(work, orig, 0o600))

	h, err := c.Open(ctx, work, testPassword, ReadWrite)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		e := NewEntry()
		setAll(t, e, map[models.Field]models.Value{
			models.FieldTitle:    models.StringValue(fmt.Sprintf("host-%02d", i)),
			models.FieldUsername: models.StringValue(fmt.Sprintf("svc-%02d", i)),
			models.FieldPassword: models.StringValue(fmt.Sprintf("pw-%02d-%d", i, i*7919)),
			models.FieldNotes:    models.StringValue(fmt.Sprintf("rack %d row %d", i*13, i*17)),
		})
		h.InsertEntry(0, e)
	}
	require.NoError(t, h.Save(ctx))

	data, err := os.ReadFile(work)
	require.NoError(t, err)
	dst := filepath.Join(t.TempDir(), "damaged.kdbx")
	require.NoError(t, os.WriteFile(dst, damage(data), 0o600))
	return dst
}

func TestKDBX_Probe(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)
	assert.NoError(t, c.Probe(path))

	garbage := filepath.Join(t.TempDir(), "garbage.kdbx")
	require.NoError(t, os.WriteFile(garbage, []byte("xx"), 0o600))
	assert.ErrorIs(t, c.Probe(garbage), ErrCorrupt)
}

func TestKDBX_SaveReadOnly(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)

	h, err := c.Open(context.Background(), path, testPassword, ReadOnly)
	require.NoError(t, err)
	assert.ErrorIs(t, h.Save(context.Background()), ErrReadOnly)
}

func TestWithLock_IsExclusiveAndReleased(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)
	ctx := context.Background()

	first, err := c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)
	second, err := c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithLock(ctx, first, func() error {
		lockErr := second.Lock(ctx)
		assert.ErrorIs(t, lockErr, ErrLockUnavailable)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// released after fn failed
	require.NoError(t, second.Lock(ctx))
	require.NoError(t, second.Unlock())
}

func TestEntry_Set(t *testing.T) {
	e := NewEntry()

	assert.ErrorIs(t, e.Set(models.FieldPK, models.IntValue(1)), ErrFieldNotWritable)
	assert.ErrorIs(t, e.Set(models.FieldOldPasswords, models.StringValue("x")), ErrFieldNotWritable)
	assert.ErrorIs(t, e.Set(models.FieldTitle, models.IntValue(1)), ErrFieldType)

	require.NoError(t, e.Set(models.FieldPassword, models.StringValue("a")))
	require.NoError(t, e.Set(models.FieldPassword, models.StringValue("a")))
	assert.Empty(t, e.History(), "same password must not create history")

	require.NoError(t, e.Set(models.FieldPassword, models.StringValue("b")))
	require.Len(t, e.History(), 1)
	assert.Equal(t, "a", e.History()[0].Password)

	_, ok := e.Get(models.FieldPK)
	assert.False(t, ok)
}

func TestLocker_ConflictsWithHandleLock(t *testing.T) {
	c := newTestCodec()
	path := createContainer(t, c)
	ctx := context.Background()

	h, err := c.Open(ctx, path, testPassword, ReadWrite)
	require.NoError(t, err)

	require.NoError(t, WithLock(ctx, c.Locker(path), func() error {
		assert.ErrorIs(t, h.Lock(ctx), ErrLockUnavailable)
		return nil
	}))
	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.Unlock())
}
