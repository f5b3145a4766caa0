package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                int    `env:"PORT" envDefault:"8080"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	RedisURL            string `env:"REDIS_URL,required"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
	ApprovalTTLMinutes  int    `env:"APPROVAL_TTL_MINUTES" envDefault:"1440"`
	ExpirySweepMinutes  int    `env:"EXPIRY_SWEEP_MINUTES" envDefault:"5"`
	DefaultRateLimitMin int    `env:"DEFAULT_RATE_LIMIT_PER_MIN" envDefault:"60"`
}

// ApprovalTTL is how long a pending_approval session waits for the initiator
// before the expiry job cancels it.
func (c *Config) ApprovalTTL() time.Duration {
	return time.Duration(c.ApprovalTTLMinutes) * time.Minute
}

func (c *Config) ExpirySweepInterval() time.Duration {
	return time.Duration(c.ExpirySweepMinutes) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.ApprovalTTLMinutes <= 0 {
		return fmt.Errorf("APPROVAL_TTL_MINUTES must be positive")
	}
	if c.ExpirySweepMinutes <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_MINUTES must be positive")
	}

	if isProduction {
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if !strings.Contains(c.DatabaseURL, "sslmode=require") {
			log.Warn().Msg("DATABASE_URL does not require TLS in production")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
