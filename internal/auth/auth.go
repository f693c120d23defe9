// Package auth is the identity side of the API: account registration,
// password login, and the bearer tokens that identify the acting user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"tracker/internal/models"
	"tracker/internal/repository"
	"tracker/internal/validate"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("no active account found with the given credentials")

// Service registers users and exchanges credentials for tokens.
type Service struct {
	users  repository.UserRepository
	tokens *Issuer
	logger *slog.Logger
	cost   int
}

// NewService builds a Service. A zero cost selects bcrypt.DefaultCost.
func NewService(users repository.UserRepository, tokens *Issuer, logger *slog.Logger, cost int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, tokens: tokens, logger: logger, cost: cost}
}

// Register creates an account. Rule violations and a taken username are
// reported as validate.FieldErrors.
func (s *Service) Register(ctx context.Context, username, password string) (models.User, error) {
	fe := validate.FieldErrors{}
	fe.Add("username", validate.Username(username))
	fe.Add("password", validate.Password(password))
	if err := fe.Err(); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, string(hash))
	if errors.Is(err, repository.ErrDuplicate) {
		s.logger.WarnContext(ctx, "username already exists", slog.String("username", username))
		fe.Addf("username", "A user with that username already exists.")
		return models.User{}, fe
	}
	if err != nil {
		return models.User{}, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Login checks the password and issues a token pair.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WarnContext(ctx, "login failed - unknown username", slog.String("username", username))
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "login failed - invalid password", slog.Int64("user_id", user.ID))
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.tokens.Pair(user)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.tokens.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	if _, err := s.users.FindUserByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return s.tokens.Access(claims.UserID)
}

// Authenticate resolves an access token to the acting user.
func (s *Service) Authenticate(ctx context.Context, access string) (models.User, error) {
	claims, err := s.tokens.Parse(access, TokenTypeAccess)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindUserByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrInvalidToken
	}
	return user, err
}
