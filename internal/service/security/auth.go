// Package security implements user registration and login.
package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"nosql-catalog/internal/domain"
)

const invalidCredentials = "Invalid email or password"

// TokenIssuer signs access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// AuthService registers users and exchanges credentials for access tokens.
type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	logger *slog.Logger
	cost   int

	// dummyHash is compared against when the user does not exist so that
	// unknown and known emails take similar time.
	dummyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AuthService{users: users, tokens: tokens, logger: logger, cost: bcrypt.DefaultCost}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-password"), s.cost)
	return s
}

// Register creates a user with a bcrypt hash of password. An email that is
// already registered yields a ConflictError.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrValidation("Email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.ErrValidation("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, &domain.User{Name: email, PasswordHash: string(hash)})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user", email)
	return u, nil
}

// Login checks the credentials and returns a signed access token. Unknown
// users and wrong passwords both yield the same UnauthorizedError.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrValidation("Email and password are required")
	}

	u, err := s.users.GetByName(ctx, email)
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.logger.Info("login failed", "user", email, "reason", "unknown user")
		return "", domain.ErrUnauthorized(invalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed", "user", email, "reason", "bad password")
		return "", domain.ErrUnauthorized(invalidCredentials)
	}

	tok, err := s.tokens.Issue(u.Name)
	if err != nil {
		return "", err
	}
	return tok, nil
}
