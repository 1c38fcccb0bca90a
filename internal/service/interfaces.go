package service

import (
	"context"

	"github.com/MKhiriev/go-psafe-cache/models"
)

// UserService manages accounts and verifies their credentials.
type UserService interface {
	// RegisterUser stores user with a bcrypt hash of password.
	RegisterUser(ctx context.Context, user models.User, password string) (models.User, error)
	// Authenticate returns the user when login and password match.
	Authenticate(ctx context.Context, login, password string) (models.User, error)
	// VerifyPassword re-checks the credential of an already loaded user.
	VerifyPassword(ctx context.Context, user models.User, password string) error
	AddToGroup(ctx context.Context, userID int64, groupName string) error
}

// RepositoryService manages repositories and the reserved personal one.
type RepositoryService interface {
	// Create stores repo. Group relations are given by group name.
	Create(ctx context.Context, repo models.Repository, groups map[models.GroupRelation][]string) (models.Repository, error)
	EnsurePersonalRepository(ctx context.Context) (models.Repository, error)
	List(ctx context.Context) ([]models.Repository, error)
}

// Synchronizer mirrors one container file into the cache store.
type Synchronizer interface {
	// Synchronize reports whether the cache was rewritten. Without force an
	// unchanged file (same mtime and size) is skipped.
	Synchronize(ctx context.Context, containerID int64, password string, force bool) (bool, error)
}

// MutationEngine applies batches of actions to a container under its lock.
type MutationEngine interface {
	Apply(ctx context.Context, containerID int64, password string, batch models.Batch) (models.MutationResult, error)
}

// VaultService stores container passwords inside each user's personal
// container.
type VaultService interface {
	GetPersonalContainer(ctx context.Context, user models.User, userPassword string) (models.Container, error)
	ReprovisionPersonalContainer(ctx context.Context, user models.User, userPassword string) (models.Container, error)
	GetStoredPassword(ctx context.Context, user models.User, userPassword string, target models.Container) (string, error)
	SetStoredPassword(ctx context.Context, user models.User, userPassword string, target models.Container, password string) error
}

// ContainerService provisions containers and scans repositories for them.
type ContainerService interface {
	CreateContainer(ctx context.Context, user models.User, req models.NewContainer) (models.Container, error)
	Discover(ctx context.Context, repoID int64) (models.DiscoveryResult, error)
	DiscoverAll(ctx context.Context) ([]models.DiscoveryResult, error)
}

// ReadService is the access-checked read and search surface of the cache.
type ReadService interface {
	GetContainer(ctx context.Context, user models.User, containerID int64) (models.Container, error)
	// RequireContainer returns the container if the user may use it in mode.
	RequireContainer(ctx context.Context, user models.User, containerID int64, mode models.AccessMode) (models.Container, error)
	GetContainerByUUID(ctx context.Context, user models.User, uuid string) (models.Container, error)
	GetContainersByUUID(ctx context.Context, user models.User, uuid string) ([]models.Container, error)
	ListContainersForUser(ctx context.Context, user models.User, mode models.AccessMode) ([]models.Container, error)
	GetEntry(ctx context.Context, user models.User, entryID int64) (models.Entry, error)
	GetEntriesByUUID(ctx context.Context, user models.User, uuid string) ([]models.Entry, error)
	GetEntriesByGroup(ctx context.Context, user models.User, userPassword string, containerID int64, group string) ([]models.Entry, error)
	Search(ctx context.Context, user models.User, userPassword string, containerID int64, query models.SearchQuery) ([]models.Entry, error)
}

// RefreshService dispatches synchronizations on the worker pool.
type RefreshService interface {
	// RefreshContainers returns how many refreshes were submitted, or with
	// wait how many completed.
	RefreshContainers(ctx context.Context, user models.User, userPassword string, containerIDs []int64, wait bool) (int, error)
	RefreshContainersByUUID(ctx context.Context, user models.User, userPassword string, uuids []string, wait bool) (int, error)
	// RefreshByTimestamp, RefreshQuick and RefreshFull use the password kept
	// in each snapshot and return how many containers changed.
	RefreshByTimestamp(ctx context.Context) (int, error)
	RefreshQuick(ctx context.Context, limit int) (int, error)
	RefreshFull(ctx context.Context) (int, error)
}
