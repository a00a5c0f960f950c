package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultRateAPIURL is a free USD-based rate feed returning {"rates": {...}}
const DefaultRateAPIURL = "https://open.er-api.com/v6/latest/USD"

// Config holds application configuration.
type Config struct {
	Port        string
	DataDir     string
	RateAPIURL  string
	LogLevel    string
	SeedOnStart bool
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// LoadConfig loads configuration from environment variables and a .env file if present.
// Real environment variables override values from .env.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("RATE_API_URL", DefaultRateAPIURL)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("SEED_ON_START", true)
	v.AutomaticEnv()

	cfg := &Config{
		Port:        v.GetString("PORT"),
		DataDir:     v.GetString("DATA_DIR"),
		RateAPIURL:  v.GetString("RATE_API_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		SeedOnStart: v.GetBool("SEED_ON_START"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.RateAPIURL == "" {
		cfg.RateAPIURL = DefaultRateAPIURL
	}

	return cfg, nil
}
