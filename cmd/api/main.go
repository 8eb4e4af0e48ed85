package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuslink/internship-auth/internal/api"
	"github.com/campuslink/internship-auth/internal/api/handler"
	"github.com/campuslink/internship-auth/internal/core/service"
	"github.com/campuslink/internship-auth/internal/infrastructure/config"
	mongodb "github.com/campuslink/internship-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/campuslink/internship-auth/internal/infrastructure/db/redis"
	"github.com/campuslink/internship-auth/internal/infrastructure/queue"
	"github.com/campuslink/internship-auth/internal/infrastructure/security"
	"github.com/campuslink/internship-auth/pkg/logger"
)

// @title                       Internship Platform Auth API
// @version                     1.0
// @description                 Credential issuing and role-based request authorization for the internship platform.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

// httpServer is the part of *http.Server that Run drives.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type realServer struct{ *http.Server }

func (r realServer) Addr() string { return r.Server.Addr }

// serverBuilder builds the server and returns a cleanup function that runs
// after the server has stopped.
type serverBuilder func(ctx context.Context) (httpServer, func(), error)

// Run starts the server and blocks until a signal arrives or the server
// fails. It returns the process exit code.
func Run(ctx context.Context, build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	srv, cleanup, err := build(ctx)
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		lg.Error().Err(err).Msg("server crashed")
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}

	lg.Info().Msg("shutdown complete")
	return 0
}

// bootstrap wires config, storage, services and the router.
func bootstrap(cfg *config.Config, log zerolog.Logger) serverBuilder {
	return func(ctx context.Context) (httpServer, func(), error) {
		mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(dctx)
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			disconnect()
			return nil, nil, err
		}

		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			disconnect()
			return nil, nil, err
		}

		jwtm, err := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
		if err != nil {
			_ = rdb.Close()
			disconnect()
			return nil, nil, fmt.Errorf("jwt: %w", err)
		}
		roles, err := cfg.Auth.Roles()
		if err != nil {
			_ = rdb.Close()
			disconnect()
			return nil, nil, err
		}
		proxies, err := cfg.RateLimit.ProxyNets()
		if err != nil {
			_ = rdb.Close()
			disconnect()
			return nil, nil, err
		}

		users := mongodb.NewUserRepository(db)
		authSvc, err := service.NewAuthService(users, security.NewBcryptHasher(cfg.Auth.BcryptCost), jwtm,
			service.WithRegistrationRoles(roles...))
		if err != nil {
			_ = rdb.Close()
			disconnect()
			return nil, nil, err
		}

		auditCtx, stopAudit := context.WithCancel(context.Background())
		audit := queue.NewAuditDispatcher(cfg.Audit.Workers, mongodb.NewAuditRepository(db), logger.For("audit"))
		audit.Start(auditCtx)

		e := api.NewRouter(api.Deps{
			AuthService:     authSvc,
			UserService:     service.NewUserService(users),
			Verifier:        jwtm,
			Audit:           audit,
			Limiter:         redisdb.NewFixedWindowLimiter(rdb),
			RateLimit:       cfg.RateLimit.Limit,
			RateLimitWindow: cfg.RateLimit.Window,
			TrustedProxies:  proxies,
			Readiness: map[string]handler.Pinger{
				"mongodb": handler.MongoPinger(db),
				"redis":   handler.RedisPinger(rdb),
			},
			Logger: log,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           e,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		cleanup := func() {
			stopAudit()
			audit.Wait()
			_ = rdb.Close()
			disconnect()
		}
		return realServer{srv}, cleanup, nil
	}
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "internship-auth",
		Env:     cfg.Env,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	os.Exit(Run(ctx, bootstrap(cfg, log), sigCh, log))
}
