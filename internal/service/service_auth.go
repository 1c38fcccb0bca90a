package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/models"
	"golang.org/x/crypto/bcrypt"
)

// userService is the concrete implementation of UserService.
// Passwords are kept as bcrypt hashes; the plain text never reaches the
// store.
type userService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// hashCost is the bcrypt cost used for new hashes.
	hashCost int

	logger *logger.Logger
}

// NewUserService constructs a UserService over the given repository.
func NewUserService(userRepository store.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		hashCost:       bcrypt.DefaultCost,
		logger:         logger,
	}
}

// RegisterUser creates a new user account.
//
// Returns the persisted user (with a store-assigned UserID) or:
//   - ErrInvalidDataProvided if Login or password is empty, or the login is
//     already taken.
//   - A wrapped storage error if the repository call fails.
func (u *userService) RegisterUser(ctx context.Context, user models.User, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || password == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		return models.User{}, fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = string(hash)

	registered, err := u.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", storeError(err))
	}
	return registered, nil
}

// Authenticate looks the user up by login and checks password. An unknown
// login and a wrong password both yield ErrBadCredential.
func (u *userService) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := u.userRepository.FindUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn().Str("login", login).Msg("unknown login")
		return models.User{}, ErrBadCredential
	}
	if err != nil {
		log.Err(err).Str("login", login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	if err = u.VerifyPassword(ctx, user, password); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (u *userService) VerifyPassword(ctx context.Context, user models.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.FromContext(ctx).Warn().Int64("user_id", user.UserID).Msg("wrong password")
		return ErrBadCredential
	}
	return nil
}

// AddToGroup adds the user to groupName, creating the group on first use.
func (u *userService) AddToGroup(ctx context.Context, userID int64, groupName string) error {
	log := logger.FromContext(ctx)

	if groupName == "" {
		return ErrInvalidDataProvided
	}
	groupID, err := u.userRepository.FindGroupByName(ctx, groupName)
	if errors.Is(err, store.ErrNotFound) {
		groupID, err = u.userRepository.CreateGroup(ctx, groupName)
	}
	if err != nil {
		log.Err(err).Str("group", groupName).Msg("error resolving group")
		return fmt.Errorf("error resolving group %q: %w", groupName, storeError(err))
	}

	if err = u.userRepository.AddUserToGroup(ctx, userID, groupID); err != nil {
		log.Err(err).Int64("user_id", userID).Int64("group_id", groupID).Msg("error adding user to group")
		return fmt.Errorf("error adding user to group: %w", storeError(err))
	}
	return nil
}
