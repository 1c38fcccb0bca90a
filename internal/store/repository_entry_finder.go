package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// entryFinder is the SQL implementation of [EntryFinder]. Results carry the
// owning container id and the password history.
type entryFinder struct {
	logger *logger.Logger
	db     *DB
}

func NewEntryFinder(db *DB, logger *logger.Logger) EntryFinder {
	logger.Debug().Msg("creating entry finder")
	return &entryFinder{
		db:     db,
		logger: logger,
	}
}

// GetEntry returns one cached entry by primary key or [ErrNotFound].
func (f *entryFinder) GetEntry(ctx context.Context, entryID int64) (models.Entry, error) {
	entries, err := f.find(ctx, sq.Eq{"e.entry_id": entryID})
	if err != nil {
		return models.Entry{}, err
	}
	if len(entries) == 0 {
		return models.Entry{}, ErrNotFound
	}
	return entries[0], nil
}

// FindEntriesByUUID returns every cached entry with the uuid across all
// containers.
func (f *entryFinder) FindEntriesByUUID(ctx context.Context, uuid string) ([]models.Entry, error) {
	return f.find(ctx, sq.Eq{"e.uuid": uuid})
}

// FindEntries runs a search over one container. Field values become IN and
// NOT IN clauses; Old Passwords is matched over the loaded history.
func (f *entryFinder) FindEntries(ctx context.Context, containerID int64, query models.SearchQuery) ([]models.Entry, error) {
	where := sq.And{sq.Eq{"s.container_id": containerID}}
	for _, fv := range query.Include {
		if fv.Field == models.FieldOldPasswords {
			continue
		}
		where = append(where, sq.Eq{"e." + fv.Field.Column(): sqlArgs(fv.Values)})
	}
	for _, fv := range query.Exclude {
		if fv.Field == models.FieldOldPasswords {
			continue
		}
		where = append(where, sq.NotEq{"e." + fv.Field.Column(): sqlArgs(fv.Values)})
	}

	entries, err := f.find(ctx, where)
	if err != nil {
		return nil, err
	}

	out := entries[:0]
	for _, e := range entries {
		if query.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *entryFinder) find(ctx context.Context, where sq.Sqlizer) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := f.db.builder().
		Select(entryColumns...).
		From("entries e").
		Join("snapshots s ON s.snapshot_id = e.snapshot_id").
		Where(where).
		OrderBy("e.entry_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	entries, err := queryEntries(ctx, f.db, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryFinder.find").Msg("error querying entries")
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	query, args, err = f.db.builder().
		Select("history_id", "entry_id", "password", "creation_time").
		From("entry_history").
		Where(sq.Eq{"entry_id": ids}).
		OrderBy("creation_time", "history_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	history, err := queryHistory(ctx, f.db, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryFinder.find").Msg("error querying history")
		return nil, err
	}

	for i := range entries {
		entries[i].History = history[entries[i].ID]
	}
	return entries, nil
}

func sqlArgs(values []models.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.SQLArg()
	}
	return out
}
