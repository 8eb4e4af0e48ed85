package ports

import (
	"context"

	"github.com/campuslink/internship-auth/internal/core/domain"
)

// ListUsersFilter carries the query parameters for listing accounts.
type ListUsersFilter struct {
	Role  domain.Role // empty = every role
	Page  int         // 1-based
	Limit int         // capped at 100 by the service
}

// UserRepository defines persistence operations for user accounts.
// Emails passed in are already normalized.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create stores the user and returns it with its assigned ID.
	// A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
}
