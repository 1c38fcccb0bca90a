package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// locator resolves a container id to its record, repository and file path.
type locator struct {
	containers   store.ContainerRepository
	repositories store.RepositoryRepository
}

type location struct {
	container models.Container
	repo      models.Repository
	path      string
}

func (l locator) locate(ctx context.Context, containerID int64) (location, error) {
	container, err := l.containers.GetContainer(ctx, containerID)
	if err != nil {
		return location{}, fmt.Errorf("container %d: %w", containerID, storeError(err))
	}
	repo, err := l.repositories.GetRepository(ctx, container.RepositoryID)
	if err != nil {
		return location{}, fmt.Errorf("repository %d: %w", container.RepositoryID, storeError(err))
	}
	if container.Missing() {
		return location{}, fmt.Errorf("%w: container %d has no file", ErrAccessDenied, containerID)
	}
	return location{container: container, repo: repo, path: container.FullPath(repo)}, nil
}
