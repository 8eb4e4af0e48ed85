package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/infrastructure/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newJWT(t *testing.T, now time.Time) *security.JWTManager {
	t.Helper()
	m, err := security.NewJWTManager(testSecret, "internship-auth", time.Hour,
		security.WithJWTClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	return m
}

func issue(t *testing.T, m *security.JWTManager, role domain.Role) string {
	t.Helper()
	token, _, err := m.Issue(&domain.User{ID: "u-1", Email: "alice@school.com", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func runAuthenticate(t *testing.T, m *security.JWTManager, header string) (bool, domain.Identity, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	var got domain.Identity
	handler := Authenticate(m)(func(c echo.Context) error {
		called = true
		got, _ = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return called, got, err
}

func TestAuthenticate_ValidToken(t *testing.T) {
	m := newJWT(t, time.Now())

	called, id, err := runAuthenticate(t, m, "Bearer "+issue(t, m, domain.RoleCompany))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if id.Subject != "u-1" || id.Email != "alice@school.com" || id.Role != domain.RoleCompany {
		t.Fatalf("identity not set: %+v", id)
	}
}

func TestAuthenticate_SchemeIsCaseInsensitive(t *testing.T) {
	m := newJWT(t, time.Now())

	called, _, err := runAuthenticate(t, m, "bearer "+issue(t, m, domain.RoleStudent))
	if err != nil || !called {
		t.Fatalf("expected lowercase scheme to pass, err=%v", err)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	now := time.Now()
	m := newJWT(t, now)
	expired := issue(t, newJWT(t, now.Add(-3*time.Hour)), domain.RoleSchoolAdmin)

	cases := map[string]string{
		"missing header":    "",
		"wrong scheme":      "Token abc",
		"no token":          "Bearer ",
		"garbage token":     "Bearer not-a-token",
		"expired token":     "Bearer " + expired,
		"basic credentials": "Basic YWRtaW46cGFzcw==",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			called, _, err := runAuthenticate(t, m, header)
			if called {
				t.Fatalf("should not reach next")
			}
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}
