package ports

import (
	"context"
	"time"

	"github.com/campuslink/internship-auth/internal/core/domain"
)

// TokenResult is returned by a successful login.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *domain.User
}

// AuthService verifies credentials and issues access tokens.
type AuthService interface {
	Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenResult, error)
}

// UserPage is one page of a user listing, with the paging actually applied.
type UserPage struct {
	Users []*domain.User
	Page  int
	Limit int
	Total int64
}

// UserService covers the administrative operations on accounts.
type UserService interface {
	List(ctx context.Context, filter ListUsersFilter) (*UserPage, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
}
