package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.StructuredConfig {
	t.Helper()
	cfg := config.Defaults()
	root := t.TempDir()
	cfg.Storage.DB.DSN = filepath.Join(root, "cache.db")
	cfg.App.PersonalRepositoryPath = filepath.Join(root, "personal")
	cfg.App.LockTimeout = 100 * time.Millisecond
	return cfg
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func TestNew_MigrateAndUse(t *testing.T) {
	ctx := testContext()
	a, err := New(ctx, testConfig(t), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	require.NoError(t, a.Migrate())
	// migrating twice is a no-op
	require.NoError(t, a.Migrate())

	user, err := a.Services.UserService.RegisterUser(ctx, models.User{Login: "alice"}, "pw")
	require.NoError(t, err)
	got, err := a.Services.UserService.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)

	repo, err := a.Services.RepositoryService.EnsurePersonalRepository(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), repo.ID)
}

func TestNew_BadDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.DB.Driver = "oracle"
	_, err := New(testContext(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestServe_StopsWithContext(t *testing.T) {
	a, err := New(testContext(), testConfig(t), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Migrate())

	ctx, cancel := context.WithTimeout(testContext(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after its context ended")
	}
}
