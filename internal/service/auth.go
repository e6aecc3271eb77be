package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/auth"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository"
)

// LoginFailedMessage is shown on the login page after bad credentials.
const LoginFailedMessage = "Invalid username or password"

// AuthService checks back-office credentials.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, passwords: passwords, logger: logger}
}

// Login returns the user matching username and password. Unknown users and
// wrong passwords both yield the same apperror.ErrUnauthorized so the
// response does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("login failed", slog.String("username", username))
			return nil, apperror.Unauthorized(LoginFailedMessage)
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			s.logger.Info("login failed", slog.String("username", username))
			return nil, apperror.Unauthorized(LoginFailedMessage)
		}
		return nil, fmt.Errorf("service/auth: verifying %q: %w", username, err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID), slog.String("username", user.Username))
	return user, nil
}

// EnsureAdmin creates the bootstrap account unless a user with that name
// already exists. An existing account keeps its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperror.ValidationFailed("username", "bootstrap admin needs a username and a password")
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/auth: %w", err)
	}
	if err := s.users.CreateUser(ctx, &model.User{Username: username, PasswordHash: hash}); err != nil {
		return fmt.Errorf("service/auth: creating bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", slog.String("username", username))
	return nil
}
