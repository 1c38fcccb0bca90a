package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/internal/access"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// readService answers reads from the cache. Every call is checked against
// the evaluator; anything the user may not read looks like it does not
// exist.
type readService struct {
	containers   store.ContainerRepository
	repositories store.RepositoryRepository
	finder       store.EntryFinder
	cache        store.CacheRepository
	vault        VaultService
	synchronizer Synchronizer
	evaluator    *access.Evaluator
	logger       *logger.Logger
}

func NewReadService(repos *store.Repositories, vault VaultService, synchronizer Synchronizer, evaluator *access.Evaluator, logger *logger.Logger) ReadService {
	return &readService{
		containers:   repos.ContainerRepository,
		repositories: repos.RepositoryRepository,
		finder:       repos.EntryFinder,
		cache:        repos.CacheRepository,
		vault:        vault,
		synchronizer: synchronizer,
		evaluator:    evaluator,
		logger:       logger,
	}
}

// accessChecker evaluates access for many containers of the same call,
// loading every repository once.
type accessChecker struct {
	r     *readService
	user  models.User
	mode  models.AccessMode
	repos map[int64]models.Repository
}

func (r *readService) checker(user models.User, mode models.AccessMode) *accessChecker {
	return &accessChecker{r: r, user: user, mode: mode, repos: map[int64]models.Repository{}}
}

func (c *accessChecker) allowed(ctx context.Context, repoID int64) (bool, error) {
	repo, ok := c.repos[repoID]
	if !ok {
		var err error
		if repo, err = c.r.repositories.GetRepository(ctx, repoID); err != nil {
			return false, storeError(err)
		}
		c.repos[repoID] = repo
	}
	return c.r.evaluator.CanAccess(c.user, repo, c.mode)
}

func (c *accessChecker) require(ctx context.Context, container models.Container) error {
	ok, err := c.allowed(ctx, container.RepositoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: container %d", ErrAccessDenied, container.ID)
	}
	return nil
}

func (r *readService) GetContainer(ctx context.Context, user models.User, containerID int64) (models.Container, error) {
	return r.RequireContainer(ctx, user, containerID, models.ModeRead)
}

func (r *readService) RequireContainer(ctx context.Context, user models.User, containerID int64, mode models.AccessMode) (models.Container, error) {
	container, err := r.containers.GetContainer(ctx, containerID)
	if err != nil {
		return models.Container{}, storeError(err)
	}
	if err = r.checker(user, mode).require(ctx, container); err != nil {
		return models.Container{}, err
	}
	return container, nil
}

// GetContainerByUUID returns the single readable container with uuid.
// Copies of one file share a uuid, so several may exist; only the ones the
// user can read count.
func (r *readService) GetContainerByUUID(ctx context.Context, user models.User, uuid string) (models.Container, error) {
	containers, err := r.GetContainersByUUID(ctx, user, uuid)
	if err != nil {
		return models.Container{}, err
	}
	switch len(containers) {
	case 0:
		return models.Container{}, fmt.Errorf("%w: container uuid %s", ErrNotFound, uuid)
	case 1:
		return containers[0], nil
	}
	return models.Container{}, fmt.Errorf("%w: %d containers with uuid %s", ErrMultipleMatches, len(containers), uuid)
}

func (r *readService) GetContainersByUUID(ctx context.Context, user models.User, uuid string) ([]models.Container, error) {
	containers, err := r.containers.FindContainersByUUID(ctx, uuid)
	if err != nil {
		return nil, storeError(err)
	}
	return r.filterContainers(ctx, r.checker(user, models.ModeRead), containers)
}

// ListContainersForUser lists the containers of every repository the user
// may use in mode.
func (r *readService) ListContainersForUser(ctx context.Context, user models.User, mode models.AccessMode) ([]models.Container, error) {
	containers, err := r.containers.ListContainers(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return r.filterContainers(ctx, r.checker(user, mode), containers)
}

func (r *readService) filterContainers(ctx context.Context, c *accessChecker, containers []models.Container) ([]models.Container, error) {
	out := make([]models.Container, 0, len(containers))
	for _, container := range containers {
		ok, err := c.allowed(ctx, container.RepositoryID)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, container)
		}
	}
	return out, nil
}

func (r *readService) GetEntry(ctx context.Context, user models.User, entryID int64) (models.Entry, error) {
	entry, err := r.finder.GetEntry(ctx, entryID)
	if err != nil {
		return models.Entry{}, storeError(err)
	}
	container, err := r.containers.GetContainer(ctx, entry.ContainerID)
	if err != nil {
		return models.Entry{}, storeError(err)
	}
	if err = r.checker(user, models.ModeRead).require(ctx, container); err != nil {
		return models.Entry{}, fmt.Errorf("%w: entry %d", err, entryID)
	}
	r.bump(ctx, entry.ContainerID)
	return entry, nil
}

func (r *readService) GetEntriesByUUID(ctx context.Context, user models.User, uuid string) ([]models.Entry, error) {
	entries, err := r.finder.FindEntriesByUUID(ctx, uuid)
	if err != nil {
		return nil, storeError(err)
	}

	c := r.checker(user, models.ModeRead)
	containerRepo := map[int64]int64{}
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		repoID, ok := containerRepo[e.ContainerID]
		if !ok {
			container, err := r.containers.GetContainer(ctx, e.ContainerID)
			if err != nil {
				return nil, storeError(err)
			}
			repoID = container.RepositoryID
			containerRepo[e.ContainerID] = repoID
		}
		allowed, err := c.allowed(ctx, repoID)
		if err != nil {
			return nil, err
		}
		if allowed {
			out = append(out, e)
		}
	}

	bumped := map[int64]bool{}
	for _, e := range out {
		if !bumped[e.ContainerID] {
			bumped[e.ContainerID] = true
			r.bump(ctx, e.ContainerID)
		}
	}
	return out, nil
}

func (r *readService) GetEntriesByGroup(ctx context.Context, user models.User, userPassword string, containerID int64, group string) ([]models.Entry, error) {
	return r.Search(ctx, user, userPassword, containerID, models.SearchQuery{
		Include: []models.FieldValues{{Field: models.FieldGroup, Values: []models.Value{models.StringValue(group)}}},
	})
}

// Search refreshes the container with the password stored in the user's
// vault, then queries its cached entries.
func (r *readService) Search(ctx context.Context, user models.User, userPassword string, containerID int64, query models.SearchQuery) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	if err := validateQuery(query); err != nil {
		return nil, err
	}
	container, err := r.GetContainer(ctx, user, containerID)
	if err != nil {
		return nil, err
	}

	password, err := r.vault.GetStoredPassword(ctx, user, userPassword, container)
	if err != nil {
		return nil, err
	}
	if _, err = r.synchronizer.Synchronize(ctx, containerID, password, false); err != nil {
		log.Err(err).Str("func", "*readService.Search").Int64("container_id", containerID).Msg("error refreshing container")
		return nil, err
	}

	entries, err := r.finder.FindEntries(ctx, containerID, query)
	if err != nil {
		return nil, storeError(err)
	}
	r.bump(ctx, containerID)
	return entries, nil
}

func (r *readService) bump(ctx context.Context, containerID int64) {
	if err := r.cache.BumpUseCount(ctx, containerID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Int64("container_id", containerID).Msg("error bumping use count")
	}
}

func validateQuery(query models.SearchQuery) error {
	for _, set := range [][]models.FieldValues{query.Include, query.Exclude} {
		for _, fv := range set {
			if !fv.Field.Valid() {
				return fmt.Errorf("%w: unknown field %d", ErrInvalidQuery, int(fv.Field))
			}
			for _, v := range fv.Values {
				if v.Kind() != fv.Field.Kind() {
					return fmt.Errorf("%w: %s wants %s values", ErrInvalidQuery, fv.Field, fv.Field.Kind())
				}
			}
		}
	}
	return nil
}
