package security_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/infrastructure/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newManager(t *testing.T, now time.Time) *security.JWTManager {
	t.Helper()
	m, err := security.NewJWTManager(testSecret, "internship-auth", time.Hour, security.WithJWTClock(fixedClock(now)))
	require.NoError(t, err)
	return m
}

func student() *domain.User {
	return &domain.User{ID: "u-1", Email: "student@school.com", Role: domain.RoleStudent, IsActive: true}
}

func TestNewJWTManager_RejectsShortSecret(t *testing.T) {
	_, err := security.NewJWTManager("short", "iss", time.Hour)
	assert.ErrorIs(t, err, security.ErrWeakSecret)
}

func TestJWTManager_IssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newManager(t, now)

	token, exp, err := m.Issue(student())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{
		Subject:   "u-1",
		Email:     "student@school.com",
		Role:      domain.RoleStudent,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}, id)
}

func TestJWTManager_Verify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newManager(t, now)

	t.Run("expired token", func(t *testing.T) {
		issuer := newManager(t, now.Add(-2*time.Hour))
		token, _, err := issuer.Issue(student())
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("tampered role claim", func(t *testing.T) {
		token, _, err := m.Issue(student())
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		forged := strings.Replace(string(payload), `"role":"STUDENT"`, `"role":"SCHOOL_ADMIN"`, 1)
		require.NotEqual(t, string(payload), forged)
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

		_, err = m.Verify(strings.Join(parts, "."))
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := security.NewJWTManager("fedcba9876543210fedcba9876543210", "internship-auth", time.Hour,
			security.WithJWTClock(fixedClock(now)))
		require.NoError(t, err)
		token, _, err := other.Issue(student())
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub":  "u-1",
			"role": "STUDENT",
			"iss":  "internship-auth",
			"exp":  now.Add(time.Hour).Unix(),
		})
		signed, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("missing expiry", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "u-1",
			"role": "STUDENT",
			"iss":  "internship-auth",
		})
		signed, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unknown role", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "u-1",
			"role": "superuser",
			"iss":  "internship-auth",
			"exp":  now.Add(time.Hour).Unix(),
		})
		signed, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		other, err := security.NewJWTManager(testSecret, "someone-else", time.Hour, security.WithJWTClock(fixedClock(now)))
		require.NoError(t, err)
		token, _, err := other.Issue(student())
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := m.Verify("not.a.jwt")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestJWTManager_IssueRejectsIncompleteUser(t *testing.T) {
	m := newManager(t, time.Now())

	_, _, err := m.Issue(&domain.User{Email: "x@school.com", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = m.Issue(&domain.User{ID: "u-2", Role: "guest"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBcryptHasher(t *testing.T) {
	h := security.NewBcryptHasher(4)

	hash, err := h.Hash("Admin123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Admin123!", hash)

	assert.NoError(t, h.Compare(hash, "Admin123!"))
	assert.Error(t, h.Compare(hash, "admin123!"))

	again, err := h.Hash("Admin123!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must differ per hash")
}
