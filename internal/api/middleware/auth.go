package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/internship-auth/internal/api/metrics"
	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

const identityKey = "identity"

// Authenticate validates the bearer token and injects the caller identity into
// the context. A missing or malformed header and a bad token all fail with
// domain.ErrUnauthenticated.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// SetIdentity stores the caller identity on the request context.
func SetIdentity(c echo.Context, identity domain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the identity injected by Authenticate.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
