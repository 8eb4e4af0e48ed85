package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// AuthService implements registration and login.
type AuthService struct {
	repo    ports.UserRepository
	hasher  ports.PasswordHasher
	issuer  ports.TokenIssuer
	allowed domain.RoleSet
	dummy   string
	now     func() time.Time
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// DefaultRegistrationRoles are the roles Register accepts unless
// WithRegistrationRoles says otherwise. Administrators are provisioned out of
// band.
func DefaultRegistrationRoles() []domain.Role {
	return []domain.Role{domain.RoleStudent, domain.RoleCompany}
}

// WithRegistrationRoles sets the roles accepted by Register. With no roles the
// defaults apply.
func WithRegistrationRoles(roles ...domain.Role) AuthOption {
	return func(s *AuthService) {
		if len(roles) > 0 {
			s.allowed = domain.NewRoleSet(roles...)
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, opts ...AuthOption) (*AuthService, error) {
	s := &AuthService{
		repo:    repo,
		hasher:  hasher,
		issuer:  issuer,
		allowed: domain.NewRoleSet(DefaultRegistrationRoles()...),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Compared against when the email is unknown, so a miss costs one hash
	// comparison like a hit does.
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	s.dummy = dummy

	return s, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, domain.ErrInvalidInput
	}
	if !role.Valid() || !s.allowed.Allows(role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return created, nil
}

// Login returns domain.ErrInvalidCredentials for an unknown email, an inactive
// account and a wrong password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummy, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: find user: %w", err)
	}

	// The hash is checked before the active flag so both paths cost the same.
	if s.hasher.Compare(user.PasswordHash, password) != nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	return &ports.TokenResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
