package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown email and wrong password;
// callers must not be able to tell the two apart.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	// Login verifies the credentials and returns the user plus a signed
	// session token.
	Login(ctx context.Context, email, password string) (*User, string, error)
	// CreateUser registers a new user with the given role.
	CreateUser(ctx context.Context, email, password string, role Role) (*User, error)
	// VerifyToken turns a raw session token into a verified identity.
	VerifyToken(token string) (*Identity, error)
}

type service struct {
	repo   Repository
	tokens *TokenManager
}

func NewService(repo Repository, tokens *TokenManager) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Login(ctx context.Context, email, password string) (*User, string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to fetch user for login")
		return nil, "", fmt.Errorf("service: failed to fetch user for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		log.Error().Err(err).Stringer("user_id", user.ID).Msg("service: failed to issue session token")
		return nil, "", fmt.Errorf("service: failed to issue session token: %w", err)
	}

	log.Info().Stringer("user_id", user.ID).Str("role", string(user.Role)).Msg("service: user logged in")
	return user, token, nil
}

func (s *service) CreateUser(ctx context.Context, email, password string, role Role) (*User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, errors.New("service: email is required")
	}
	if password == "" {
		return nil, errors.New("service: password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate user id: %w", err)
	}

	user := &User{
		ID:           id,
		Email:        normalized,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", user.ID).Str("role", string(role)).Msg("service: user created")
	return user, nil
}

func (s *service) VerifyToken(token string) (*Identity, error) {
	return s.tokens.Verify(token)
}
