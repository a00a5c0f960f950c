package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("RATE_API_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, DefaultRateAPIURL, cfg.RateAPIURL)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/dca")
	t.Setenv("RATE_API_URL", "http://localhost:1234/latest")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEED_ON_START", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/dca", cfg.DataDir)
	assert.Equal(t, "http://localhost:1234/latest", cfg.RateAPIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.SeedOnStart)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":3000", (&Config{Port: ":3000"}).Addr())
	assert.Equal(t, ":3000", (&Config{Port: "3000"}).Addr())
}
