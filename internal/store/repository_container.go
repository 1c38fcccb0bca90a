package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// containerRepository is the SQL implementation of [ContainerRepository].
type containerRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewContainerRepository(db *DB, logger *logger.Logger) ContainerRepository {
	logger.Debug().Msg("creating container repository")
	return &containerRepository{
		db:     db,
		logger: logger,
	}
}

// CreateContainer inserts a container record and returns it with its id.
func (r *containerRepository) CreateContainer(ctx context.Context, container models.Container) (models.Container, error) {
	log := logger.FromContext(ctx)

	var owner any
	if container.OwnerID != nil {
		owner = *container.OwnerID
	}
	query, args, err := r.db.builder().
		Insert("containers").
		Columns("repository_id", "filename", "uuid", "owner_id").
		Values(container.RepositoryID, container.Filename, container.UUID, owner).
		Suffix("RETURNING container_id").
		ToSql()
	if err != nil {
		return models.Container{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&container.ID); err != nil {
		log.Err(err).Str("func", "*containerRepository.CreateContainer").
			Int64("repository_id", container.RepositoryID).Str("filename", container.Filename).
			Msg("error inserting container")
		return models.Container{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return container, nil
}

// GetContainer returns the container record or [ErrNotFound].
func (r *containerRepository) GetContainer(ctx context.Context, containerID int64) (models.Container, error) {
	return r.one(ctx, sq.Eq{"container_id": containerID})
}

// ListContainers returns every container ordered by id.
func (r *containerRepository) ListContainers(ctx context.Context) ([]models.Container, error) {
	return r.list(ctx, nil)
}

// ListContainersByRepository returns the containers of one repository,
// missing ones included.
func (r *containerRepository) ListContainersByRepository(ctx context.Context, repoID int64) ([]models.Container, error) {
	return r.list(ctx, sq.Eq{"repository_id": repoID})
}

// FindContainersByUUID returns every container sharing the internal uuid;
// file copies produce more than one.
func (r *containerRepository) FindContainersByUUID(ctx context.Context, uuid string) ([]models.Container, error) {
	return r.list(ctx, sq.Eq{"uuid": uuid})
}

// FindOwnedContainer returns the container of repoID owned by ownerID or
// [ErrNotFound].
func (r *containerRepository) FindOwnedContainer(ctx context.Context, repoID, ownerID int64) (models.Container, error) {
	return r.one(ctx, sq.Eq{"repository_id": repoID, "owner_id": ownerID})
}

// SetFilename relinks the container to filename.
func (r *containerRepository) SetFilename(ctx context.Context, containerID int64, filename string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Update("containers").
		Set("filename", filename).
		Where(sq.Eq{"container_id": containerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*containerRepository.SetFilename").Int64("container_id", containerID).Msg("error updating container")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *containerRepository) one(ctx context.Context, where sq.Sqlizer) (models.Container, error) {
	query, args, err := r.db.builder().Select(containerColumns...).From("containers").Where(where).ToSql()
	if err != nil {
		return models.Container{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	c, err := scanContainer(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Container{}, ErrNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*containerRepository.one").Msg("error scanning container")
		return models.Container{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return c, nil
}

func (r *containerRepository) list(ctx context.Context, where sq.Sqlizer) ([]models.Container, error) {
	b := r.db.builder().Select(containerColumns...).From("containers").OrderBy("container_id")
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	containers, err := queryContainers(ctx, r.db, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*containerRepository.list").Msg("error listing containers")
		return nil, err
	}
	return containers, nil
}
