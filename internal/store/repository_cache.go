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

// cacheRepository is the SQL implementation of [CacheRepository] over the
// "snapshots", "entries" and "entry_history" tables.
type cacheRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	logger.Debug().Msg("creating cache repository")
	return &cacheRepository{
		db:     db,
		logger: logger,
	}
}

// GetSnapshot returns the snapshot of a container or [ErrNotFound] before the
// first synchronization.
func (r *cacheRepository) GetSnapshot(ctx context.Context, containerID int64) (models.Snapshot, error) {
	query, args, err := r.db.builder().
		Select(snapshotColumns...).
		From("snapshots").
		Where(sq.Eq{"container_id": containerID}).
		ToSql()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	s, err := scanSnapshot(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, ErrNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cacheRepository.GetSnapshot").
			Int64("container_id", containerID).Msg("error scanning snapshot")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return s, nil
}

// ListSnapshots returns every snapshot ordered by container.
func (r *cacheRepository) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	query, args, err := r.db.builder().
		Select(snapshotColumns...).
		From("snapshots").
		OrderBy("container_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return querySnapshots(ctx, r.db, query, args...)
}

// LeastRecentlyRefreshed returns up to limit snapshots, oldest refresh first.
func (r *cacheRepository) LeastRecentlyRefreshed(ctx context.Context, limit int) ([]models.Snapshot, error) {
	query, args, err := r.db.builder().
		Select(snapshotColumns...).
		From("snapshots").
		OrderBy("last_refreshed", "container_id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return querySnapshots(ctx, r.db, query, args...)
}

// BumpUseCount records one cached read of the container.
func (r *cacheRepository) BumpUseCount(ctx context.Context, containerID int64) error {
	query, args, err := r.db.builder().
		Update("snapshots").
		Set("use_count", sq.Expr("use_count + 1")).
		Where(sq.Eq{"container_id": containerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cacheRepository.BumpUseCount").
			Int64("container_id", containerID).Msg("error bumping use count")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// WithTx runs fn against one transaction; nothing fn wrote survives an error.
func (r *cacheRepository) WithTx(ctx context.Context, fn func(tx CacheTx) error) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&cacheTx{tx: tx, db: r.db})
	})
}

type cacheTx struct {
	tx DBTX
	db *DB
}

func (t *cacheTx) SetContainerUUID(ctx context.Context, containerID int64, uuid string) error {
	query, args, err := t.db.builder().
		Update("containers").
		Set("uuid", uuid).
		Where(sq.Eq{"container_id": containerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cacheTx.SetContainerUUID").
			Int64("container_id", containerID).Msg("error updating container uuid")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (t *cacheTx) SaveSnapshot(ctx context.Context, s models.Snapshot) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	if s.ID == 0 {
		query, args, err := t.db.builder().
			Insert("snapshots").
			Columns(snapshotColumns[1:]...).
			Values(snapshotValues(s)...).
			Suffix("RETURNING snapshot_id").
			ToSql()
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&s.ID); err != nil {
			log.Err(err).Str("func", "*cacheTx.SaveSnapshot").Int64("container_id", s.ContainerID).Msg("error inserting snapshot")
			return models.Snapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		return s, nil
	}

	update := t.db.builder().Update("snapshots").Where(sq.Eq{"snapshot_id": s.ID})
	values := snapshotValues(s)
	for i, column := range snapshotColumns[1:] {
		update = update.Set(column, values[i])
	}
	query, args, err := update.ToSql()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*cacheTx.SaveSnapshot").Int64("snapshot_id", s.ID).Msg("error updating snapshot")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return s, nil
}

// ListEntries returns the cached entries of a snapshot with their history.
func (t *cacheTx) ListEntries(ctx context.Context, snapshotID int64) ([]models.Entry, error) {
	query, args, err := t.db.builder().
		Select(entryColumns...).
		From("entries e").
		Join("snapshots s ON s.snapshot_id = e.snapshot_id").
		Where(sq.Eq{"e.snapshot_id": snapshotID}).
		OrderBy("e.entry_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	entries, err := queryEntries(ctx, t.tx, query, args...)
	if err != nil {
		return nil, err
	}

	query, args, err = t.db.builder().
		Select("h.history_id", "h.entry_id", "h.password", "h.creation_time").
		From("entry_history h").
		Join("entries e ON e.entry_id = h.entry_id").
		Where(sq.Eq{"e.snapshot_id": snapshotID}).
		OrderBy("h.creation_time", "h.history_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	history, err := queryHistory(ctx, t.tx, query, args...)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].History = history[entries[i].ID]
	}
	return entries, nil
}

func (t *cacheTx) InsertEntry(ctx context.Context, snapshotID int64, e models.Entry) (int64, error) {
	query, args, err := t.db.builder().
		Insert("entries").
		Columns(append([]string{"snapshot_id"}, entryWriteColumns...)...).
		Values(append([]any{snapshotID}, entryWriteValues(e)...)...).
		Suffix("RETURNING entry_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cacheTx.InsertEntry").
			Int64("snapshot_id", snapshotID).Str("uuid", e.UUID).Msg("error inserting entry")
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateIdentity, e.UUID)
		}
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return id, nil
}

func (t *cacheTx) UpdateEntry(ctx context.Context, e models.Entry) error {
	update := t.db.builder().Update("entries").Where(sq.Eq{"entry_id": e.ID})
	values := entryWriteValues(e)
	for i, column := range entryWriteColumns {
		update = update.Set(column, values[i])
	}
	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cacheTx.UpdateEntry").Int64("entry_id", e.ID).Msg("error updating entry")
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentity, e.UUID)
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (t *cacheTx) DeleteEntries(ctx context.Context, entryIDs []int64) error {
	if len(entryIDs) == 0 {
		return nil
	}
	// history first: the sqlite connection may run without cascading deletes
	if err := t.deleteWhere(ctx, "entry_history", sq.Eq{"entry_id": entryIDs}); err != nil {
		return err
	}
	return t.deleteWhere(ctx, "entries", sq.Eq{"entry_id": entryIDs})
}

func (t *cacheTx) InsertHistory(ctx context.Context, entryID int64, h models.HistoryItem) error {
	query, args, err := t.db.builder().
		Insert("entry_history").
		Columns("entry_id", "password", "creation_time").
		Values(entryID, h.Password, h.CreationTime.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cacheTx.InsertHistory").Int64("entry_id", entryID).Msg("error inserting history")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (t *cacheTx) DeleteHistory(ctx context.Context, historyIDs []int64) error {
	if len(historyIDs) == 0 {
		return nil
	}
	return t.deleteWhere(ctx, "entry_history", sq.Eq{"history_id": historyIDs})
}

func (t *cacheTx) deleteWhere(ctx context.Context, table string, where sq.Eq) error {
	query, args, err := t.db.builder().Delete(table).Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cacheTx.deleteWhere").Str("table", table).Msg("error deleting rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
