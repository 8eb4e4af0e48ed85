package service

import (
	"context"
	"fmt"

	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type userService struct {
	repo ports.UserRepository
}

// NewUserService returns the administrative UserService.
func NewUserService(repo ports.UserRepository) ports.UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context, filter ports.ListUsersFilter) (*ports.UserPage, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.UserPage{Users: users, Page: filter.Page, Limit: filter.Limit, Total: total}, nil
}

// SetActive toggles the login gate on an account. Tokens already issued stay
// valid until they expire. An account already in the requested state is
// returned without a write.
func (s *userService) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	if current.IsActive == active {
		return current, nil
	}
	user, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	return user, nil
}
