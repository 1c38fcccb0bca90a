package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
)

// userRepository is the SQL implementation of [UserRepository]. It handles
// accounts in the "users" table and group membership in "access_groups" and
// "user_groups".
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns it with the
// store-assigned UserID and CreatedAt.
//
// Error handling:
//   - unique violation on login → [ErrLoginAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingQuery].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	user.CreatedAt = time.Now().UTC()
	query, args, err := r.db.builder().
		Insert("users").
		Columns("login", "name", "password_hash", "is_superuser", "created_at").
		Values(user.Login, user.Name, user.PasswordHash, user.IsSuperuser, user.CreatedAt).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.UserID); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Str("login", user.Login).Msg("error inserting user")
		if isUniqueViolation(err) {
			return models.User{}, ErrLoginAlreadyExists
		}
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return user, nil
}

// FindUserByLogin retrieves a user with its group membership.
// A missing user yields [ErrNotFound].
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	return r.findUser(ctx, "login", login)
}

// FindUserByID retrieves a user with its group membership.
// A missing user yields [ErrNotFound].
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, "user_id", userID)
}

func (r *userRepository) findUser(ctx context.Context, column string, value any) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select("user_id", "login", "name", "password_hash", "is_superuser", "created_at").
		From("users").
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var user models.User
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&user.UserID, &user.Login, &user.Name, &user.PasswordHash, &user.IsSuperuser, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.findUser").Str("by", column).Msg("error scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if user.Groups, err = r.userGroups(ctx, user.UserID); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) userGroups(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := r.db.builder().
		Select("group_id").
		From("user_groups").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("group_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return queryInt64s(ctx, r.db, query, args...)
}

// CreateGroup inserts a named group and returns its id.
func (r *userRepository) CreateGroup(ctx context.Context, name string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Insert("access_groups").
		Columns("name").
		Values(name).
		Suffix("RETURNING group_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var groupID int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&groupID); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateGroup").Str("group", name).Msg("error inserting group")
		if isUniqueViolation(err) {
			return 0, ErrNameAlreadyExists
		}
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return groupID, nil
}

// FindGroupByName returns the id of the named group or [ErrNotFound].
func (r *userRepository) FindGroupByName(ctx context.Context, name string) (int64, error) {
	query, args, err := r.db.builder().
		Select("group_id").
		From("access_groups").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var groupID int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return groupID, nil
}

// AddUserToGroup records membership. Adding an existing member is a no-op.
func (r *userRepository) AddUserToGroup(ctx context.Context, userID, groupID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Insert("user_groups").
		Columns("user_id", "group_id").
		Values(userID, groupID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		log.Err(err).Str("func", "*userRepository.AddUserToGroup").
			Int64("user_id", userID).Int64("group_id", groupID).Msg("error inserting membership")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
