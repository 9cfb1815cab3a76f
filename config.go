package qreg

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

/*
Config carries every tunable of the service. Field defaults live in the
envDefault tags and in NewConfig, which must agree.
*/
type Config struct {
	Addr         string `env:"QREG_ADDR"          envDefault:":5000"`
	EngineMode   string `env:"QREG_ENGINE_MODE"   envDefault:"symbolic"`
	SymmetricSet bool   `env:"QREG_SYMMETRIC_SET" envDefault:"false"`
	Seed         uint64 `env:"QREG_SEED"          envDefault:"0"`

	SessionTTL      time.Duration `env:"QREG_SESSION_TTL"       envDefault:"30m"`
	CleanupInterval time.Duration `env:"QREG_CLEANUP_INTERVAL"  envDefault:"1m"`
	HistoryLimit    int           `env:"QREG_HISTORY_LIMIT"     envDefault:"256"`
	MaxSessions     int           `env:"QREG_MAX_SESSIONS"      envDefault:"10000"`

	// RateLimit is the number of requests admitted per RateInterval. Zero
	// disables limiting.
	RateLimit    int           `env:"QREG_RATE_LIMIT"    envDefault:"0"`
	RateInterval time.Duration `env:"QREG_RATE_INTERVAL" envDefault:"1s"`

	BreakerMaxFailures int           `env:"QREG_BREAKER_MAX_FAILURES" envDefault:"5"`
	BreakerReset       time.Duration `env:"QREG_BREAKER_RESET"        envDefault:"10s"`
	BreakerHalfOpenMax int           `env:"QREG_BREAKER_HALF_OPEN"    envDefault:"1"`

	ServiceName  string `env:"QREG_SERVICE_NAME"  envDefault:"qregd"`
	OTelEndpoint string `env:"QREG_OTEL_ENDPOINT"`
}

func NewConfig() *Config {
	return &Config{
		Addr:               ":5000",
		EngineMode:         string(ModeSymbolic),
		SessionTTL:         30 * time.Minute,
		CleanupInterval:    time.Minute,
		HistoryLimit:       256,
		MaxSessions:        DefaultMaxSessions,
		RateInterval:       time.Second,
		BreakerMaxFailures: 5,
		BreakerReset:       10 * time.Second,
		BreakerHalfOpenMax: 1,
		ServiceName:        "qregd",
	}
}

/*
LoadConfig reads the given .env files (missing files are skipped), then
parses the environment over the defaults.
*/
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := NewConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := ParseMode(c.EngineMode); err != nil {
		return fmt.Errorf("QREG_ENGINE_MODE: %w", err)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("QREG_MAX_SESSIONS must be at least 1, got %d", c.MaxSessions)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("QREG_RATE_LIMIT must not be negative, got %d", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateInterval <= 0 {
		return errors.New("QREG_RATE_INTERVAL must be positive when rate limiting is on")
	}
	return nil
}

// Policy returns the engine policy the config describes.
func (c *Config) Policy() Policy {
	mode, err := ParseMode(c.EngineMode)
	if err != nil {
		mode = ModeSymbolic
	}
	return Policy{Mode: mode, SymmetricSet: c.SymmetricSet}
}
