package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://127.0.0.1:3000"`

	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"8h"`

	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	SummaryCacheTTL time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"30s"`

	SuperAdminUsername string `envconfig:"SUPER_ADMIN_USERNAME" default:"superadmin"`
	SuperAdminEmail    string `envconfig:"SUPER_ADMIN_EMAIL" default:"superadmin@pos.local"`
	SuperAdminPassword string `envconfig:"SUPER_ADMIN_PASSWORD"`

	LowStockThreshold int `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Validate enforces startup requirements that envconfig defaults cannot
// express. The super admin password has no default on purpose: without it
// the bootstrap account is skipped entirely.
func (c Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be set and at least 32 characters")
	}
	if c.SuperAdminPassword != "" && len(c.SuperAdminPassword) < 6 {
		return fmt.Errorf("SUPER_ADMIN_PASSWORD must be at least 6 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
