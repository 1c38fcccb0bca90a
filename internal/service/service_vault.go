// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/MKhiriev/go-psafe-cache/internal/access"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/internal/workers"
	"github.com/MKhiriev/go-psafe-cache/models"
)

const (
	vaultGroupPrefix = "Password Safe Passwords."
	vaultTitlePrefix = "PSafe id "

	// vaultMaxMatches caps how many stored copies one set may rewrite.
	vaultMaxMatches = 5
)

// provisioner creates a container file and its record without an access
// check.
type provisioner interface {
	provision(ctx context.Context, repo models.Repository, req models.NewContainer, saveUser string) (models.Container, error)
	recreate(ctx context.Context, repo models.Repository, container models.Container, req models.NewContainer, saveUser string) (models.Container, error)
}

// vaultService keeps the passwords of shared containers as entries of each
// user's personal container. The personal container is encrypted with the
// user's own password and lives in the reserved repository, which the
// evaluator never opens; this service is the only way in.
type vaultService struct {
	users        UserService
	repositories RepositoryService
	containers   store.ContainerRepository
	repoStore    store.RepositoryRepository
	finder       store.EntryFinder
	cache        store.CacheRepository
	provisioner  provisioner
	synchronizer Synchronizer
	engine       MutationEngine
	evaluator    *access.Evaluator
	pool         *workers.Pool
	logger       *logger.Logger
}

func NewVaultService(
	repos *store.Repositories,
	users UserService,
	repositories RepositoryService,
	provisioner provisioner,
	synchronizer Synchronizer,
	engine MutationEngine,
	evaluator *access.Evaluator,
	pool *workers.Pool,
	logger *logger.Logger,
) VaultService {
	return &vaultService{
		users:        users,
		repositories: repositories,
		containers:   repos.ContainerRepository,
		repoStore:    repos.RepositoryRepository,
		finder:       repos.EntryFinder,
		cache:        repos.CacheRepository,
		provisioner:  provisioner,
		synchronizer: synchronizer,
		engine:       engine,
		evaluator:    evaluator,
		pool:         pool,
		logger:       logger,
	}
}

// PersonalContainerFilename is the deterministic file name of a user's vault.
func PersonalContainerFilename(login string) string {
	return "User_Password_Safe_" + login + ".kdbx"
}

// vaultKey addresses the stored password of target inside a vault.
func vaultKey(target models.Container) (group, title, username string) {
	return vaultGroupPrefix + strconv.FormatInt(target.RepositoryID, 10),
		vaultTitlePrefix + strconv.FormatInt(target.ID, 10),
		target.Filename
}

// GetPersonalContainer returns the user's vault, creating it on first use
// with userPassword as its password. Creation runs on the worker pool and is
// waited for. A recorded vault whose file is gone is AccessDenied until
// ReprovisionPersonalContainer replaces it.
func (v *vaultService) GetPersonalContainer(ctx context.Context, user models.User, userPassword string) (models.Container, error) {
	log := logger.FromContext(ctx)

	repo, err := v.repositories.EnsurePersonalRepository(ctx)
	if err != nil {
		return models.Container{}, err
	}

	container, err := v.containers.FindOwnedContainer(ctx, repo.ID, user.UserID)
	switch {
	case err == nil:
		if v.fileExists(container, repo) {
			return container, nil
		}
		return models.Container{}, fmt.Errorf("%w: personal container %d has no file", ErrAccessDenied, container.ID)
	case !errors.Is(err, store.ErrNotFound):
		log.Err(err).Str("func", "*vaultService.GetPersonalContainer").Int64("user_id", user.UserID).Msg("error finding personal container")
		return models.Container{}, storeError(err)
	}

	return v.provisionPersonal(ctx, repo, user, userPassword, func(jobCtx context.Context, req models.NewContainer) (models.Container, error) {
		return v.provisioner.provision(jobCtx, repo, req, user.Login)
	})
}

// ReprovisionPersonalContainer replaces a vault whose file is gone with an
// empty one under the same record; the stored passwords it held are lost.
// The caller's password is re-verified. A vault that still has its file is
// left alone and yields ErrInvalidDataProvided; a user without a vault gets
// a new one.
func (v *vaultService) ReprovisionPersonalContainer(ctx context.Context, user models.User, userPassword string) (models.Container, error) {
	if err := v.users.VerifyPassword(ctx, user, userPassword); err != nil {
		return models.Container{}, err
	}

	repo, err := v.repositories.EnsurePersonalRepository(ctx)
	if err != nil {
		return models.Container{}, err
	}

	container, err := v.containers.FindOwnedContainer(ctx, repo.ID, user.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return v.GetPersonalContainer(ctx, user, userPassword)
	}
	if err != nil {
		return models.Container{}, storeError(err)
	}
	if v.fileExists(container, repo) {
		return models.Container{}, fmt.Errorf("%w: personal container %d is intact", ErrInvalidDataProvided, container.ID)
	}

	return v.provisionPersonal(ctx, repo, user, userPassword, func(jobCtx context.Context, req models.NewContainer) (models.Container, error) {
		return v.provisioner.recreate(jobCtx, repo, container, req, user.Login)
	})
}

func (v *vaultService) fileExists(container models.Container, repo models.Repository) bool {
	if container.Filename == "" {
		return false
	}
	_, err := os.Stat(container.FullPath(repo))
	return err == nil
}

// provisionPersonal runs create on the worker pool and waits for it.
func (v *vaultService) provisionPersonal(
	ctx context.Context,
	repo models.Repository,
	user models.User,
	userPassword string,
	create func(ctx context.Context, req models.NewContainer) (models.Container, error),
) (models.Container, error) {
	req := models.NewContainer{
		RepositoryID: repo.ID,
		Filename:     PersonalContainerFilename(user.Login),
		Password:     userPassword,
		OwnerID:      &user.UserID,
		Name:         "Personal Password Safe For " + user.Login,
	}

	var container models.Container
	future := v.pool.Submit(ctx, "provision-personal-container", func(jobCtx context.Context) error {
		created, err := create(jobCtx, req)
		container = created
		return err
	})
	if err := future.Wait(ctx); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*vaultService.provisionPersonal").Int64("user_id", user.UserID).Msg("error provisioning personal container")
		return models.Container{}, err
	}
	return container, nil
}

// GetStoredPassword re-verifies the user's own password and current Read
// access to target before looking the stored password up.
func (v *vaultService) GetStoredPassword(ctx context.Context, user models.User, userPassword string, target models.Container) (string, error) {
	log := logger.FromContext(ctx)

	target, err := v.authorize(ctx, user, userPassword, target)
	if err != nil {
		return "", err
	}

	personal, err := v.GetPersonalContainer(ctx, user, userPassword)
	if err != nil {
		return "", err
	}
	if _, err = v.synchronizer.Synchronize(ctx, personal.ID, userPassword, false); err != nil {
		return "", err
	}

	group, title, username := vaultKey(target)
	entries, err := v.finder.FindEntries(ctx, personal.ID, models.SearchQuery{
		Include: []models.FieldValues{
			{Field: models.FieldGroup, Values: []models.Value{models.StringValue(group)}},
			{Field: models.FieldTitle, Values: []models.Value{models.StringValue(title)}},
			{Field: models.FieldUsername, Values: []models.Value{models.StringValue(username)}},
		},
	})
	if err != nil {
		return "", storeError(err)
	}
	if err = v.cache.BumpUseCount(ctx, personal.ID); err != nil {
		log.Warn().Err(err).Int64("container_id", personal.ID).Msg("error bumping use count")
	}

	switch len(entries) {
	case 0:
		return "", fmt.Errorf("%w: container %d", ErrNoStoredPassword, target.ID)
	case 1:
		return entries[0].Password, nil
	}
	// the synthetic key is meant to be unique
	log.Error().Int64("container_id", target.ID).Int("matches", len(entries)).Msg("vault holds several passwords for one container")
	return "", fmt.Errorf("%w: %d stored passwords for container %d", ErrMultipleMatches, len(entries), target.ID)
}

// SetStoredPassword stores password for target in the user's vault with an
// AddOrUpdate on the vault key.
func (v *vaultService) SetStoredPassword(ctx context.Context, user models.User, userPassword string, target models.Container, password string) error {
	target, err := v.authorize(ctx, user, userPassword, target)
	if err != nil {
		return err
	}

	personal, err := v.GetPersonalContainer(ctx, user, userPassword)
	if err != nil {
		return err
	}

	group, title, username := vaultKey(target)
	batch := models.Batch{
		OnError:      models.OnErrorFail,
		RefreshCache: true,
		Actions: []models.Action{{
			Kind: models.ActionAddOrUpdate,
			ValueFilters: []models.Filter{
				{Field: models.FieldGroup, Value: models.StringValue(group)},
				{Field: models.FieldTitle, Value: models.StringValue(title)},
			},
			Changes: []models.Change{
				{Field: models.FieldGroup, Value: models.StringValue(group)},
				{Field: models.FieldTitle, Value: models.StringValue(title)},
				{Field: models.FieldUsername, Value: models.StringValue(username)},
				{Field: models.FieldPassword, Value: models.StringValue(password)},
			},
			MaxMatches: vaultMaxMatches,
		}},
	}
	if _, err = v.engine.Apply(ctx, personal.ID, userPassword, batch); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*vaultService.SetStoredPassword").
			Int64("container_id", target.ID).Msg("error storing container password")
		return err
	}
	return nil
}

// authorize checks the caller's credential and Read access to target, and
// returns the current record of target.
func (v *vaultService) authorize(ctx context.Context, user models.User, userPassword string, target models.Container) (models.Container, error) {
	if err := v.users.VerifyPassword(ctx, user, userPassword); err != nil {
		return models.Container{}, err
	}

	current, err := v.containers.GetContainer(ctx, target.ID)
	if err != nil {
		return models.Container{}, storeError(err)
	}
	repo, err := v.repoStore.GetRepository(ctx, current.RepositoryID)
	if err != nil {
		return models.Container{}, storeError(err)
	}
	ok, err := v.evaluator.CanAccess(user, repo, models.ModeRead)
	if err != nil {
		return models.Container{}, err
	}
	if !ok {
		return models.Container{}, fmt.Errorf("%w: container %d", ErrAccessDenied, target.ID)
	}
	return current, nil
}
