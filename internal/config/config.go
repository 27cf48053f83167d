package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    int    `env:"LOG_LEVEL" envDefault:"0"`
	MySQLDSN    string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/glaminator?charset=utf8mb4&parseTime=True&loc=Local"`
	ResetDB     bool   `env:"RESET_DB" envDefault:"false"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass   string `env:"REDIS_PASSWORD"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"change-me"`
	SwaggerHost string `env:"SWAGGER_HOST"`
	BcryptCost  int    `env:"BCRYPT_COST" envDefault:"10"`

	UserCacheTTL time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`

	Pull   Pull   `envPrefix:"PULL_"`
	Ledger Ledger `envPrefix:"LEDGER_"`
	Prefs  Prefs  `envPrefix:"PREFS_"`
}

// Pull contains gacha pull parameters.
type Pull struct {
	Cooldown time.Duration `env:"COOLDOWN" envDefault:"1m"`
}

// Ledger contains retry parameters for reward ledger writes.
type Ledger struct {
	MaxRetries    uint64        `env:"MAX_RETRIES" envDefault:"3"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"50ms"`
}

// Prefs contains local preference store parameters.
type Prefs struct {
	Path string `env:"PATH" envDefault:"glaminator-prefs.db"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
