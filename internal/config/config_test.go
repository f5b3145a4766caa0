package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/exchange")
		t.Setenv("REDIS_URL", "redis://localhost:6379")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 1440, cfg.ApprovalTTLMinutes)
		assert.Equal(t, ":8080", cfg.Addr())
	})

	t.Run("fails without DATABASE_URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("REDIS_URL", "redis://localhost:6379")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DatabaseURL:        "postgres://localhost/exchange?sslmode=require",
			RedisURL:           "rediss://localhost:6379",
			ApprovalTTLMinutes: 60,
			ExpirySweepMinutes: 5,
		}
	}

	t.Run("accepts a sane production config", func(t *testing.T) {
		assert.NoError(t, base().Validate(true))
	})

	t.Run("rejects non-positive approval TTL", func(t *testing.T) {
		cfg := base()
		cfg.ApprovalTTLMinutes = 0
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects non-positive sweep interval", func(t *testing.T) {
		cfg := base()
		cfg.ExpirySweepMinutes = -1
		assert.Error(t, cfg.Validate(false))
	})
}
