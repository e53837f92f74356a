//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/errors"
	"direct-chat/repositories"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(username, password string) (domain.User, error)
	Verify(username, password string) (domain.User, error)
	ResolveID(username string) (uuid.UUID, error)
}

// AuthService is the credential store: it owns password hashing so the
// repository never sees a plain password.
type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	params         auth.Params
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository, params auth.Params) *AuthService {
	return &AuthService{log: log, userRepository: repo, params: params}
}

func (s *AuthService) Register(username, password string) (domain.User, error) {
	// Validate before any expensive cryptographic operation.
	if err := auth.ValidateCredentials(auth.Credentials{Username: username, Password: password}); err != nil {
		return domain.User{}, err
	}

	hashedPassword, err := auth.HashPassword(password, s.params)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(username, hashedPassword)
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("User registered", "username", username)
	return user, nil
}

// Verify returns ErrInvalidCredentials for both an unknown username and a
// wrong password. The wrapped cause tells them apart for logs and tests.
func (s *AuthService) Verify(username, password string) (domain.User, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if errors.Is(err, errors.ErrUserNotFound) {
		s.log.Warn("Login rejected", "username", username, "cause", err)
		return domain.User{}, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
	}
	if err != nil {
		return domain.User{}, err
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error("Stored hash is unreadable", "username", username, "error", err)
		return domain.User{}, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
	}
	if !match {
		s.log.Warn("Login rejected", "username", username, "cause", errors.ErrPasswordMismatch)
		return domain.User{}, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, errors.ErrPasswordMismatch)
	}
	return user, nil
}

// ResolveID maps a username to the stable ID the message log is keyed by.
func (s *AuthService) ResolveID(username string) (uuid.UUID, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}
