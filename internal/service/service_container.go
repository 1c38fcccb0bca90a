package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/go-psafe-cache/internal/access"
	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
)

type containerService struct {
	containers   store.ContainerRepository
	repositories store.RepositoryRepository
	codec        codec.Codec
	synchronizer Synchronizer
	evaluator    *access.Evaluator
	logger       *logger.Logger
}

func newContainerService(repos *store.Repositories, c codec.Codec, synchronizer Synchronizer, evaluator *access.Evaluator, logger *logger.Logger) *containerService {
	return &containerService{
		containers:   repos.ContainerRepository,
		repositories: repos.RepositoryRepository,
		codec:        c,
		synchronizer: synchronizer,
		evaluator:    evaluator,
		logger:       logger,
	}
}

// CreateContainer writes a new empty container into a repository the user
// may write to, records it and loads it into the cache.
func (s *containerService) CreateContainer(ctx context.Context, user models.User, req models.NewContainer) (models.Container, error) {
	repo, err := s.repositories.GetRepository(ctx, req.RepositoryID)
	if err != nil {
		return models.Container{}, storeError(err)
	}
	ok, err := s.evaluator.CanAccess(user, repo, models.ModeReadWrite)
	if err != nil {
		return models.Container{}, err
	}
	if !ok {
		return models.Container{}, fmt.Errorf("%w: repository %d", ErrAccessDenied, repo.ID)
	}
	return s.provision(ctx, repo, req, user.Login)
}

// provision creates the file, the record and the first snapshot. It runs
// without an access check.
func (s *containerService) provision(ctx context.Context, repo models.Repository, req models.NewContainer, saveUser string) (models.Container, error) {
	log := logger.FromContext(ctx)

	filename, err := s.cleanFilename(req.Filename)
	if err != nil {
		return models.Container{}, err
	}
	if req.Password == "" {
		return models.Container{}, fmt.Errorf("%w: empty container password", ErrInvalidDataProvided)
	}

	path := filepath.Join(repo.Path, filename)
	h, err := s.codec.Create(ctx, path, req.Password, models.Header{
		Name:         req.Name,
		Description:  req.Description,
		LastSaveUser: saveUser,
	})
	if errors.Is(err, codec.ErrExists) {
		return models.Container{}, fmt.Errorf("%w: %s already exists", ErrInvalidDataProvided, filename)
	}
	if err != nil {
		log.Err(err).Str("func", "*containerService.provision").Str("path", path).Msg("error creating container file")
		return models.Container{}, codecError(err)
	}

	container, err := s.containers.CreateContainer(ctx, models.Container{
		RepositoryID: repo.ID,
		Filename:     filename,
		UUID:         h.ContainerUUID(),
		OwnerID:      req.OwnerID,
	})
	if err != nil {
		log.Err(err).Str("func", "*containerService.provision").Str("path", path).Msg("error recording container")
		return models.Container{}, storeError(err)
	}

	if _, err = s.synchronizer.Synchronize(ctx, container.ID, req.Password, true); err != nil {
		return container, fmt.Errorf("container %d created but not cached: %w", container.ID, err)
	}
	log.Info().Int64("container_id", container.ID).Str("path", path).Msg("container provisioned")
	return container, nil
}

// recreate writes a fresh empty file for a recorded container whose file is
// gone and resynchronizes the record with it. A container marked missing is
// relinked to req.Filename first.
func (s *containerService) recreate(ctx context.Context, repo models.Repository, container models.Container, req models.NewContainer, saveUser string) (models.Container, error) {
	log := logger.FromContext(ctx)

	if container.Filename == "" {
		filename, err := s.cleanFilename(req.Filename)
		if err != nil {
			return models.Container{}, err
		}
		if err = s.containers.SetFilename(ctx, container.ID, filename); err != nil {
			return models.Container{}, storeError(err)
		}
		container.Filename = filename
	}

	path := container.FullPath(repo)
	_, err := s.codec.Create(ctx, path, req.Password, models.Header{
		Name:         req.Name,
		Description:  req.Description,
		LastSaveUser: saveUser,
	})
	if errors.Is(err, codec.ErrExists) {
		return models.Container{}, fmt.Errorf("%w: %s still exists", ErrInvalidDataProvided, container.Filename)
	}
	if err != nil {
		log.Err(err).Str("func", "*containerService.recreate").Str("path", path).Msg("error recreating container file")
		return models.Container{}, codecError(err)
	}

	if _, err = s.synchronizer.Synchronize(ctx, container.ID, req.Password, true); err != nil {
		return container, fmt.Errorf("container %d recreated but not cached: %w", container.ID, err)
	}
	log.Warn().Int64("container_id", container.ID).Str("path", path).Msg("container file recreated empty")
	return container, nil
}

func (s *containerService) cleanFilename(name string) (string, error) {
	name = filepath.Clean(name)
	if name == "." || filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: bad container filename %q", ErrInvalidDataProvided, name)
	}
	if filepath.Ext(name) != s.codec.Extension() {
		name += s.codec.Extension()
	}
	return name, nil
}

// Discover records container files found below the repository root that
// are not known yet, and marks known containers whose file disappeared as
// missing. The personal repository is left alone: its containers are
// provisioned by the vault.
func (s *containerService) Discover(ctx context.Context, repoID int64) (models.DiscoveryResult, error) {
	log := logger.FromContext(ctx)
	result := models.DiscoveryResult{RepositoryID: repoID}

	if repoID == s.evaluator.PersonalRepositoryID() {
		log.Debug().Int64("repository_id", repoID).Msg("skipping discovery of personal repository")
		return result, nil
	}

	repo, err := s.repositories.GetRepository(ctx, repoID)
	if err != nil {
		return result, storeError(err)
	}
	known, err := s.containers.ListContainersByRepository(ctx, repoID)
	if err != nil {
		return result, storeError(err)
	}

	onDisk, err := s.scan(repo.Path)
	if err != nil {
		log.Err(err).Str("func", "*containerService.Discover").Str("path", repo.Path).Msg("error scanning repository")
		return result, fmt.Errorf("error scanning repository %d: %w", repoID, err)
	}

	byName := make(map[string]models.Container, len(known))
	for _, c := range known {
		if !c.Missing() {
			byName[c.Filename] = c
		}
	}

	for _, name := range onDisk {
		if _, ok := byName[name]; ok {
			delete(byName, name)
			continue
		}
		if err = s.codec.Probe(filepath.Join(repo.Path, name)); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("not a container, skipping")
			continue
		}
		if _, err = s.containers.CreateContainer(ctx, models.Container{RepositoryID: repoID, Filename: name}); err != nil {
			return result, storeError(err)
		}
		result.Added++
	}

	for _, c := range byName {
		if err = s.containers.SetFilename(ctx, c.ID, ""); err != nil {
			return result, storeError(err)
		}
		log.Warn().Int64("container_id", c.ID).Str("file", c.Filename).Msg("container file missing")
		result.Missing++
	}

	log.Info().Int64("repository_id", repoID).Int("added", result.Added).Int("missing", result.Missing).Msg("repository scanned")
	return result, nil
}

// scan lists container files below root as paths relative to it.
func (s *containerService) scan(root string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || filepath.Ext(d.Name()) != s.codec.Extension() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, rel)
		return nil
	})
	return names, err
}

// DiscoverAll scans every repository. A failing repository does not stop
// the others; the joined error is returned with the partial results.
func (s *containerService) DiscoverAll(ctx context.Context) ([]models.DiscoveryResult, error) {
	repos, err := s.repositories.ListRepositories(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	var (
		results []models.DiscoveryResult
		errs    []error
	)
	for _, repo := range repos {
		if repo.ID == s.evaluator.PersonalRepositoryID() {
			continue
		}
		res, err := s.Discover(ctx, repo.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
