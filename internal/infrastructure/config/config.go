package config

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/campuslink/internship-auth/internal/core/domain"
)

// Config is built once at startup and handed explicitly to the components
// that need it.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	JWTIssuer  string        `env:"JWT_ISSUER, default=internship-auth"`
	TokenTTL   time.Duration `env:"JWT_TTL,    default=1h"`
	BcryptCost int           `env:"BCRYPT_COST, default=12"`
	// RegistrationRoles lists the roles accepted by POST /auth/register.
	// SCHOOL_ADMIN accounts come from cmd/seed.
	RegistrationRoles []string `env:"REGISTRATION_ROLES, default=STUDENT,COMPANY"`
}

type RateLimitConfig struct {
	Limit  int           `env:"AUTH_RATE_LIMIT,  default=10"`
	Window time.Duration `env:"AUTH_RATE_WINDOW, default=1m"`
	// TrustedProxies lists the CIDR ranges whose X-Forwarded-For is believed.
	// Empty means the client IP is the TCP peer address.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=internship_platform"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := cfg.Auth.Roles(); err != nil {
		return nil, fmt.Errorf("config: REGISTRATION_ROLES: %w", err)
	}
	if _, err := cfg.RateLimit.ProxyNets(); err != nil {
		return nil, fmt.Errorf("config: TRUSTED_PROXIES: %w", err)
	}
	return &cfg, nil
}

// Roles parses RegistrationRoles.
func (a AuthConfig) Roles() ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(a.RegistrationRoles))
	for _, raw := range a.RegistrationRoles {
		r, err := domain.ParseRole(raw)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, nil
}

// ProxyNets parses TrustedProxies.
func (r RateLimitConfig) ProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(r.TrustedProxies))
	for _, raw := range r.TrustedProxies {
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, err
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// IsDevelopment enables human-friendly log output.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SeedConfig is the subset read by the seed command. It does not need a
// signing secret.
type SeedConfig struct {
	LogLevel      string `env:"LOG_LEVEL,           default=info"`
	BcryptCost    int    `env:"BCRYPT_COST,         default=12"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL,    default=admin@school.com"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD, default=Admin123!"`
	// Demo adds one STUDENT and one COMPANY account next to the admin.
	Demo bool `env:"SEED_DEMO, default=true"`

	Mongo MongoConfig
}

// LoadSeed reads the seed command configuration from the environment.
func LoadSeed(ctx context.Context) (*SeedConfig, error) {
	return loadSeed(ctx, envconfig.OsLookuper())
}

func loadSeed(ctx context.Context, lookuper envconfig.Lookuper) (*SeedConfig, error) {
	var cfg SeedConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
