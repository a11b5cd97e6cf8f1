package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/auth"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// AuthService handles registration, login, and identity lookups.
//
// Passwords never leave this layer in plaintext: they are hashed on the
// way in and compared against the stored hash on login. Token issuance is
// delegated to auth.TokenService; cookie handling lives in the handler.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a new account and returns the profile plus a signed
// token for the session cookie.
//
// Email uniqueness is enforced by the store; a duplicate surfaces as
// ErrConflict rather than a second SELECT-then-INSERT race here.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" {
		return nil, "", apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", apperror.ValidationFailed("email", "email is not valid")
	}
	if name == "" {
		return nil, "", apperror.ValidationFailed("name", "name is required")
	}
	if len(password) < MinPasswordLength {
		return nil, "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", apperror.ValidationFailed("password", "password is not usable")
	}

	profile := &model.Profile{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	if err := s.users.CreateUser(ctx, profile); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(profile.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", profile.ID),
		slog.String("email", profile.Email),
	)

	return profile, token, nil
}

// errInvalidCredentials is the single error for every login failure.
// Distinguishing "no such account" from "wrong password" would let an
// attacker enumerate registered emails.
var errInvalidCredentials = apperror.Unauthorized("invalid email or password")

// Login verifies credentials and returns the profile plus a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", errInvalidCredentials
	}

	profile, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, "", errInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(profile.PasswordHash, password); err != nil {
		return nil, "", errInvalidCredentials
	}

	token, err := s.tokens.Generate(profile.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", profile.ID))

	return profile, token, nil
}

// CurrentUser returns the profile for an authenticated user ID.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("not logged in")
	}
	return s.users.GetUserByID(ctx, userID)
}
