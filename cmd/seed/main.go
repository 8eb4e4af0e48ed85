package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
	"github.com/campuslink/internship-auth/internal/infrastructure/config"
	mongodb "github.com/campuslink/internship-auth/internal/infrastructure/db/mongo"
	"github.com/campuslink/internship-auth/internal/infrastructure/security"
	"github.com/campuslink/internship-auth/pkg/logger"
)

type account struct {
	Email    string
	Password string
	Role     domain.Role
}

func accounts(cfg *config.SeedConfig) []account {
	out := []account{{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Role: domain.RoleSchoolAdmin}}
	if cfg.Demo {
		out = append(out,
			account{Email: "student@school.com", Password: "Student123!", Role: domain.RoleStudent},
			account{Email: "hr@acme.com", Password: "Company123!", Role: domain.RoleCompany},
		)
	}
	return out
}

// seed creates each account that does not exist yet and leaves existing ones
// untouched, so it can run on every deploy.
func seed(ctx context.Context, repo ports.UserRepository, hasher ports.PasswordHasher, list []account, log zerolog.Logger) (int, error) {
	created := 0
	for _, a := range list {
		email := domain.NormalizeEmail(a.Email)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			log.Info().Str("email", email).Msg("account exists, skipping")
			continue
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return created, fmt.Errorf("lookup %s: %w", email, err)
		}

		hash, err := hasher.Hash(a.Password)
		if err != nil {
			return created, fmt.Errorf("hash %s: %w", email, err)
		}
		now := time.Now().UTC()
		_, err = repo.Create(ctx, &domain.User{
			Email:        email,
			PasswordHash: hash,
			Role:         a.Role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if errors.Is(err, domain.ErrUserExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create %s: %w", email, err)
		}
		created++
		log.Info().Str("email", email).Str("role", string(a.Role)).Msg("account created")
	}
	return created, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadSeed(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "internship-auth-seed"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	n, err := seed(ctx, mongodb.NewUserRepository(db), security.NewBcryptHasher(cfg.BcryptCost), accounts(cfg), log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("created", n).Msg("seed complete")
}
