package middleware

import (
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campuslink/internship-auth/internal/api/metrics"
	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

// Policy is the route table of required roles, keyed by method and echo route
// pattern. It is filled while routes are registered and read on every request.
type Policy struct {
	mu     sync.RWMutex
	routes map[string]domain.RoleSet
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

// NewPolicy returns an empty policy. audit may be nil.
func NewPolicy(audit ports.AuditRecorder, log zerolog.Logger) *Policy {
	return &Policy{
		routes: make(map[string]domain.RoleSet),
		audit:  audit,
		log:    log,
	}
}

// Declare sets the roles permitted on method+path. No roles means any
// authenticated caller.
func (p *Policy) Declare(method, path string, roles ...domain.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[routeKey(method, path)] = domain.NewRoleSet(roles...)
}

// Lookup returns the roles declared for method+path.
func (p *Policy) Lookup(method, path string) (domain.RoleSet, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set, ok := p.routes[routeKey(method, path)]
	return set, ok
}

// Authorize checks the caller's role against the route's declared set. It must
// run after Authenticate. Routes missing from the table are refused.
func (p *Policy) Authorize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			method, path := c.Request().Method, c.Path()
			allowed, declared := p.Lookup(method, path)
			if !declared {
				p.log.Warn().Str("method", method).Str("path", path).Msg("route has no role policy, refusing")
			}
			if !declared || !allowed.Allows(identity.Role) {
				p.deny(c, identity)
				return domain.ErrForbidden
			}

			metrics.AuthorizationDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}

func (p *Policy) deny(c echo.Context, identity domain.Identity) {
	metrics.AuthorizationDecisionsTotal.WithLabelValues("forbidden").Inc()
	if p.audit == nil {
		return
	}
	p.audit.Record(domain.AuthEvent{
		Kind:     domain.EventAccessDenied,
		Email:    identity.Email,
		UserID:   identity.Subject,
		Role:     identity.Role,
		RemoteIP: c.RealIP(),
		Path:     c.Request().Method + " " + c.Path(),
	})
}

func routeKey(method, path string) string {
	return method + " " + path
}
