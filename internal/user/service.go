package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/pedido-service/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service interface {
	CreateUser(ctx context.Context, username, password string, role Role) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	EnsureAdminUser(ctx context.Context, username, password string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateUser(ctx context.Context, username, password string, role Role) (*User, error) {
	if username == "" {
		return nil, errors.New("service: username is required")
	}
	if password == "" {
		return nil, errors.New("service: password is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("service: unknown role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Stringer("user_id", u.ID).Str("username", username).Str("role", role.String()).Msg("service: user created")
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service: failed to fetch user: %w", err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// EnsureAdminUser creates the bootstrap admin account on first start.
func (s *service) EnsureAdminUser(ctx context.Context, username, password string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		log.Info().Str("username", username).Msg("service: admin user already exists")
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("service: failed to check admin user: %w", err)
	}

	if _, err := s.CreateUser(ctx, username, password, RoleAdmin); err != nil {
		return fmt.Errorf("service: failed to create admin user: %w", err)
	}

	log.Info().Str("username", username).Msg("service: admin user created")
	return nil
}
