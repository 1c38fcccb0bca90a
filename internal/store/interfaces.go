package store

import (
	"context"

	"github.com/MKhiriev/go-psafe-cache/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository stores accounts and their group membership.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	CreateGroup(ctx context.Context, name string) (int64, error)
	FindGroupByName(ctx context.Context, name string) (int64, error)
	AddUserToGroup(ctx context.Context, userID, groupID int64) error
}

// RepositoryRepository stores repositories with their five group relations.
type RepositoryRepository interface {
	CreateRepository(ctx context.Context, repo models.Repository) (models.Repository, error)
	// EnsureRepository creates repo with its fixed id unless it exists.
	EnsureRepository(ctx context.Context, repo models.Repository) error
	GetRepository(ctx context.Context, repoID int64) (models.Repository, error)
	ListRepositories(ctx context.Context) ([]models.Repository, error)
}

// ContainerRepository stores container records.
type ContainerRepository interface {
	CreateContainer(ctx context.Context, container models.Container) (models.Container, error)
	GetContainer(ctx context.Context, containerID int64) (models.Container, error)
	ListContainers(ctx context.Context) ([]models.Container, error)
	ListContainersByRepository(ctx context.Context, repoID int64) ([]models.Container, error)
	FindContainersByUUID(ctx context.Context, uuid string) ([]models.Container, error)
	FindOwnedContainer(ctx context.Context, repoID, ownerID int64) (models.Container, error)
	// SetFilename relinks a container to a file; an empty name marks it missing.
	SetFilename(ctx context.Context, containerID int64, filename string) error
}

// CacheRepository reads snapshots and runs synchronization writes in a
// single transaction.
type CacheRepository interface {
	GetSnapshot(ctx context.Context, containerID int64) (models.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
	LeastRecentlyRefreshed(ctx context.Context, limit int) ([]models.Snapshot, error)
	BumpUseCount(ctx context.Context, containerID int64) error
	WithTx(ctx context.Context, fn func(tx CacheTx) error) error
}

// CacheTx is the transactional write surface of the synchronizer.
type CacheTx interface {
	SetContainerUUID(ctx context.Context, containerID int64, uuid string) error
	// SaveSnapshot inserts s when s.ID is zero and updates it otherwise.
	SaveSnapshot(ctx context.Context, s models.Snapshot) (models.Snapshot, error)
	ListEntries(ctx context.Context, snapshotID int64) ([]models.Entry, error)
	InsertEntry(ctx context.Context, snapshotID int64, e models.Entry) (int64, error)
	UpdateEntry(ctx context.Context, e models.Entry) error
	DeleteEntries(ctx context.Context, entryIDs []int64) error
	InsertHistory(ctx context.Context, entryID int64, h models.HistoryItem) error
	DeleteHistory(ctx context.Context, historyIDs []int64) error
}

// EntryFinder is the read and search surface over cached entries.
type EntryFinder interface {
	GetEntry(ctx context.Context, entryID int64) (models.Entry, error)
	FindEntriesByUUID(ctx context.Context, uuid string) ([]models.Entry, error)
	FindEntries(ctx context.Context, containerID int64, query models.SearchQuery) ([]models.Entry, error)
}
