package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
)

const personalRepositoryName = "Personal Password Safes"

type repositoryService struct {
	repositories store.RepositoryRepository
	users        store.UserRepository
	personal     models.Repository
	logger       *logger.Logger
}

func NewRepositoryService(repos *store.Repositories, cfg config.App, logger *logger.Logger) RepositoryService {
	return &repositoryService{
		repositories: repos.RepositoryRepository,
		users:        repos.UserRepository,
		personal: models.Repository{
			ID:   cfg.PersonalRepositoryID,
			Name: personalRepositoryName,
			Path: cfg.PersonalRepositoryPath,
		},
		logger: logger,
	}
}

// Create stores repo after resolving the group names of every relation.
// Unknown groups are created.
func (r *repositoryService) Create(ctx context.Context, repo models.Repository, groups map[models.GroupRelation][]string) (models.Repository, error) {
	log := logger.FromContext(ctx)

	if repo.Name == "" || repo.Path == "" {
		return models.Repository{}, ErrInvalidDataProvided
	}
	if repo.ID == r.personal.ID {
		return models.Repository{}, fmt.Errorf("%w: repository id %d is reserved", ErrInvalidDataProvided, repo.ID)
	}

	// the reserved id must be taken before the sequence can hand it out
	if _, err := r.EnsurePersonalRepository(ctx); err != nil {
		return models.Repository{}, err
	}

	for relation, names := range groups {
		for _, name := range names {
			groupID, err := r.groupID(ctx, name)
			if err != nil {
				return models.Repository{}, err
			}
			if err = repo.AddGroup(relation, groupID); err != nil {
				return models.Repository{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
			}
		}
	}

	created, err := r.repositories.CreateRepository(ctx, repo)
	if err != nil {
		log.Err(err).Str("func", "*repositoryService.Create").Str("name", repo.Name).Msg("error creating repository")
		return models.Repository{}, storeError(err)
	}
	return created, nil
}

func (r *repositoryService) groupID(ctx context.Context, name string) (int64, error) {
	id, err := r.users.FindGroupByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		id, err = r.users.CreateGroup(ctx, name)
	}
	if err != nil {
		return 0, fmt.Errorf("error resolving group %q: %w", name, storeError(err))
	}
	return id, nil
}

// EnsurePersonalRepository creates the reserved repository with its fixed id
// unless it exists, and returns it.
func (r *repositoryService) EnsurePersonalRepository(ctx context.Context) (models.Repository, error) {
	if err := r.repositories.EnsureRepository(ctx, r.personal); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*repositoryService.EnsurePersonalRepository").
			Int64("repository_id", r.personal.ID).Msg("error ensuring personal repository")
		return models.Repository{}, storeError(err)
	}
	repo, err := r.repositories.GetRepository(ctx, r.personal.ID)
	if err != nil {
		return models.Repository{}, storeError(err)
	}
	return repo, nil
}

func (r *repositoryService) List(ctx context.Context) ([]models.Repository, error) {
	repos, err := r.repositories.ListRepositories(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return repos, nil
}
