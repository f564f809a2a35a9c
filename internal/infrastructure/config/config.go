package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string   `env:"PORT,         default=8000"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	AppName     string   `env:"APP_NAME,     default=WisdomBase API"`
	AppVersion  string   `env:"APP_VERSION,  default=1.0.0"`
	APIPrefix   string   `env:"API_PREFIX,   default=/api/v1"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173,http://localhost:3000"`

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`

	JWT   JWTConfig
	Login LoginConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET,        required"`
	Algorithm  string        `env:"JWT_ALGORITHM,     default=HS256"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=120m"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=720h"`
}

// LoginConfig drives the failed-login throttle. MaxAttempts 0 disables it.
type LoginConfig struct {
	MaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS,   default=5"`
	LockoutWindow time.Duration `env:"LOGIN_LOCKOUT_WINDOW, default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=wisdombase"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
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
	if cfg.AuditWorkers <= 0 {
		return nil, fmt.Errorf("config: AUDIT_WORKERS must be positive, got %d", cfg.AuditWorkers)
	}
	if cfg.Login.MaxAttempts < 0 {
		return nil, fmt.Errorf("config: LOGIN_MAX_ATTEMPTS must not be negative, got %d", cfg.Login.MaxAttempts)
	}
	cfg.APIPrefix = "/" + strings.Trim(cfg.APIPrefix, "/")
	return &cfg, nil
}

// IsDevelopment reports whether the service runs with developer defaults
// (console logging).
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// ThrottleEnabled reports whether failed logins are counted in Redis.
func (c *Config) ThrottleEnabled() bool {
	return c.Login.MaxAttempts > 0
}
