package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// repositoryRepository is the SQL implementation of [RepositoryRepository]
// over the "repositories" and "repository_groups" tables.
type repositoryRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewRepositoryRepository(db *DB, logger *logger.Logger) RepositoryRepository {
	logger.Debug().Msg("creating repository repository")
	return &repositoryRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRepository inserts repo and its group relations in one transaction.
func (r *repositoryRepository) CreateRepository(ctx context.Context, repo models.Repository) (models.Repository, error) {
	log := logger.FromContext(ctx)

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.db.builder().
			Insert("repositories").
			Columns("name", "path").
			Values(repo.Name, repo.Path).
			Suffix("RETURNING repository_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&repo.ID); err != nil {
			if isUniqueViolation(err) {
				return ErrNameAlreadyExists
			}
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		return r.insertRelations(ctx, tx, repo)
	})
	if err != nil {
		log.Err(err).Str("func", "*repositoryRepository.CreateRepository").Str("name", repo.Name).Msg("error creating repository")
		return models.Repository{}, err
	}
	return repo, nil
}

// EnsureRepository inserts repo under its own id unless that id is taken.
func (r *repositoryRepository) EnsureRepository(ctx context.Context, repo models.Repository) error {
	log := logger.FromContext(ctx)

	_, err := r.GetRepository(ctx, repo.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.db.builder().
			Insert("repositories").
			Columns("repository_id", "name", "path").
			Values(repo.ID, repo.Name, repo.Path).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if r.db.driver == config.DriverPostgres {
			// explicit ids do not advance the serial sequence
			if _, err := tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('repositories', 'repository_id'), (SELECT MAX(repository_id) FROM repositories))`); err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
		}
		return r.insertRelations(ctx, tx, repo)
	})
	if err != nil {
		log.Err(err).Str("func", "*repositoryRepository.EnsureRepository").Int64("repository_id", repo.ID).Msg("error creating repository")
		return err
	}
	log.Info().Str("func", "*repositoryRepository.EnsureRepository").Int64("repository_id", repo.ID).Msg("repository created")
	return nil
}

func (r *repositoryRepository) insertRelations(ctx context.Context, tx DBTX, repo models.Repository) error {
	relations := repo.Relations()
	insert := r.db.builder().Insert("repository_groups").Columns("repository_id", "group_id", "relation")
	n := 0
	for _, relation := range []models.GroupRelation{
		models.RelationAdmin, models.RelationReadAllow, models.RelationReadDeny,
		models.RelationWriteAllow, models.RelationWriteDeny,
	} {
		for _, groupID := range relations[relation] {
			insert = insert.Values(repo.ID, groupID, string(relation))
			n++
		}
	}
	if n == 0 {
		return nil
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// GetRepository returns a repository with its group relations or
// [ErrNotFound].
func (r *repositoryRepository) GetRepository(ctx context.Context, repoID int64) (models.Repository, error) {
	repos, err := r.list(ctx, sq.Eq{"repository_id": repoID})
	if err != nil {
		return models.Repository{}, err
	}
	if len(repos) == 0 {
		return models.Repository{}, ErrNotFound
	}
	return repos[0], nil
}

// ListRepositories returns every repository ordered by id.
func (r *repositoryRepository) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	return r.list(ctx, nil)
}

func (r *repositoryRepository) list(ctx context.Context, where sq.Sqlizer) ([]models.Repository, error) {
	log := logger.FromContext(ctx)

	selectRepos := r.db.builder().Select("repository_id", "name", "path").From("repositories").OrderBy("repository_id")
	selectGroups := r.db.builder().Select("repository_id", "group_id", "relation").From("repository_groups").OrderBy("group_id")
	if where != nil {
		selectRepos = selectRepos.Where(where)
		selectGroups = selectGroups.Where(where)
	}

	query, args, err := selectRepos.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*repositoryRepository.list").Msg("error querying repositories")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	repos := make([]models.Repository, 0, 8)
	index := make(map[int64]int)
	for rows.Next() {
		var repo models.Repository
		if err := rows.Scan(&repo.ID, &repo.Name, &repo.Path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		index[repo.ID] = len(repos)
		repos = append(repos, repo)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	query, args, err = selectGroups.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	rows, err = r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*repositoryRepository.list").Msg("error querying repository groups")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var repoID, groupID int64
		var relation string
		if err := rows.Scan(&repoID, &groupID, &relation); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		i, ok := index[repoID]
		if !ok {
			continue
		}
		if err := repos[i].AddGroup(models.GroupRelation(relation), groupID); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return repos, nil
}
