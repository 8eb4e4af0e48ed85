package ports

import (
	"time"

	"github.com/campuslink/internship-auth/internal/core/domain"
)

// PasswordHasher abstracts the one-way password hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

// TokenVerifier checks signature and expiry and decodes the caller identity.
// Every failure is reported as domain.ErrUnauthenticated.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
