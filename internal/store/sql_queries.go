package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/models"
)

var (
	containerColumns = []string{"container_id", "repository_id", "filename", "uuid", "owner_id"}

	snapshotColumns = []string{
		"snapshot_id", "container_id", "uuid", "db_name", "db_description", "db_password",
		"last_save_time", "last_save_app", "last_save_host", "last_save_user",
		"file_last_modified", "file_last_size", "use_count", "last_refreshed",
	}

	// entryColumns lists entry columns qualified with the "e" alias; the
	// container id comes from the joined snapshot "s".
	entryColumns = []string{
		"e.entry_id", "e.snapshot_id", "s.container_id", "e.uuid",
		"e.group_path", "e.title", "e.username", "e.notes", "e.password",
		"e.creation_time", "e.password_mod_time", "e.access_time", "e.password_expiry_time", "e.mod_time",
		"e.url", "e.autotype", "e.run_command", "e.email",
	}

	// entryWriteColumns are the entry columns set on insert and update, in
	// the order of [entryWriteValues].
	entryWriteColumns = []string{
		"uuid", "group_path", "title", "username", "notes", "password",
		"creation_time", "password_mod_time", "access_time", "password_expiry_time", "mod_time",
		"url", "autotype", "run_command", "email",
	}
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContainer(row rowScanner) (models.Container, error) {
	var c models.Container
	var owner sql.NullInt64
	if err := row.Scan(&c.ID, &c.RepositoryID, &c.Filename, &c.UUID, &owner); err != nil {
		return models.Container{}, err
	}
	if owner.Valid {
		c.OwnerID = &owner.Int64
	}
	return c, nil
}

func scanSnapshot(row rowScanner) (models.Snapshot, error) {
	var s models.Snapshot
	err := row.Scan(
		&s.ID, &s.ContainerID, &s.UUID, &s.DBName, &s.DBDescription, &s.DBPassword,
		&s.LastSaveTime, &s.LastSaveApp, &s.LastSaveHost, &s.LastSaveUser,
		&s.FileLastModified, &s.FileLastSize, &s.UseCount, &s.LastRefreshed,
	)
	return s, err
}

func snapshotValues(s models.Snapshot) []any {
	return []any{
		s.ContainerID, s.UUID, s.DBName, s.DBDescription, s.DBPassword,
		s.LastSaveTime.UTC(), s.LastSaveApp, s.LastSaveHost, s.LastSaveUser,
		s.FileLastModified.UTC(), s.FileLastSize, s.UseCount, s.LastRefreshed.UTC(),
	}
}

func scanEntry(row rowScanner) (models.Entry, error) {
	var e models.Entry
	err := row.Scan(
		&e.ID, &e.SnapshotID, &e.ContainerID, &e.UUID,
		&e.Group, &e.Title, &e.Username, &e.Notes, &e.Password,
		&e.CreationTime, &e.PasswordModTime, &e.AccessTime, &e.PasswordExpiryTime, &e.ModTime,
		&e.URL, &e.AutoType, &e.RunCommand, &e.Email,
	)
	return e, err
}

func entryWriteValues(e models.Entry) []any {
	return []any{
		e.UUID, e.Group, e.Title, e.Username, e.Notes, e.Password,
		e.CreationTime.UTC(), e.PasswordModTime.UTC(), e.AccessTime.UTC(), e.PasswordExpiryTime.UTC(), e.ModTime.UTC(),
		e.URL, e.AutoType, e.RunCommand, e.Email,
	}
}

func queryInt64s(ctx context.Context, db DBTX, query string, args ...any) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	out := make([]int64, 0, 8)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return out, nil
}

func queryContainers(ctx context.Context, db DBTX, query string, args ...any) ([]models.Container, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	out := make([]models.Container, 0, 16)
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return out, nil
}

func querySnapshots(ctx context.Context, db DBTX, query string, args ...any) ([]models.Snapshot, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	out := make([]models.Snapshot, 0, 16)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return out, nil
}

func queryEntries(ctx context.Context, db DBTX, query string, args ...any) ([]models.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	out := make([]models.Entry, 0, 64)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return out, nil
}

// queryHistory loads history rows grouped by entry id, oldest first.
func queryHistory(ctx context.Context, db DBTX, query string, args ...any) (map[int64][]models.HistoryItem, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	out := make(map[int64][]models.HistoryItem)
	for rows.Next() {
		var h models.HistoryItem
		if err := rows.Scan(&h.ID, &h.EntryID, &h.Password, &h.CreationTime); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		out[h.EntryID] = append(out[h.EntryID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return out, nil
}
