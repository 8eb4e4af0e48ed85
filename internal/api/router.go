package api

import (
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/campuslink/internship-auth/docs"
	"github.com/campuslink/internship-auth/internal/api/handler"
	"github.com/campuslink/internship-auth/internal/api/middleware"
	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Audit, Limiter and Registry
// are optional.
type Deps struct {
	AuthService ports.AuthService
	UserService ports.UserService
	Verifier    ports.TokenVerifier
	Audit       ports.AuditRecorder

	Limiter         ports.RateLimiter
	RateLimit       int
	RateLimitWindow time.Duration
	// TrustedProxies are the ranges whose X-Forwarded-For header is honoured
	// when resolving the client IP. Empty means the TCP peer address.
	TrustedProxies []*net.IPNet

	Readiness map[string]handler.Pinger
	Logger    zerolog.Logger

	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Every authenticated route is declared in the role policy as it is added, so
// the table and the router cannot drift apart.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.IPExtractor = ipExtractor(deps.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "internship_auth",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	// After the metrics middleware: the logger renders errors, so request
	// metrics see the final status code.
	e.Use(requestLogger(deps.Logger))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Audit)
	userHandler := handler.NewUserHandler(deps.UserService, deps.Audit)

	r := &routes{
		e:      e,
		policy: middleware.NewPolicy(deps.Audit, deps.Logger),
		authn:  middleware.Authenticate(deps.Verifier),
	}

	// --- Public auth routes ---
	e.POST("/auth/register", authHandler.Register, limit(deps, "register")...)
	e.POST("/auth/login", authHandler.Login, limit(deps, "login")...)

	// --- Authenticated routes ---
	r.protect(http.MethodGet, "/auth/me", authHandler.Me)
	r.protect(http.MethodGet, "/users", userHandler.List, domain.RoleSchoolAdmin)
	r.protect(http.MethodPatch, "/users/:id/status", userHandler.SetStatus, domain.RoleSchoolAdmin)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

type routes struct {
	e      *echo.Echo
	policy *middleware.Policy
	authn  echo.MiddlewareFunc
}

// protect registers an authenticated route and declares its roles. No roles
// admits any authenticated caller.
func (r *routes) protect(method, path string, h echo.HandlerFunc, roles ...domain.Role) {
	r.policy.Declare(method, path, roles...)
	r.e.Add(method, path, h, r.authn, r.policy.Authorize())
}

// limit returns the rate-limit middleware for scope, or nothing when no
// limiter is configured.
func limit(deps Deps, scope string) []echo.MiddlewareFunc {
	if deps.Limiter == nil {
		return nil
	}
	return []echo.MiddlewareFunc{
		middleware.RateLimit(deps.Limiter, scope, deps.RateLimit, deps.RateLimitWindow, deps.Logger),
	}
}

// ipExtractor resolves c.RealIP for rate limiting and audit records. Forwarded
// headers are only read from the listed proxies.
func ipExtractor(proxies []*net.IPNet) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range proxies {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
