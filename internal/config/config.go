// Package config loads server and CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/robalobadob/cryptix/internal/game"
)

const devSecret = "dev_secret_change_me"

// Config is every environment-driven setting.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	NodeEnv  string `env:"NODE_ENV" envDefault:"development"`
	DBPath   string `env:"DB_PATH" envDefault:"./data/cryptix.db"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"cryptix_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	WordsFile      string `env:"WORDS_FILE"`
	SeedWords      bool   `env:"SEED_WORDS" envDefault:"true"`
	MaxAttempts    int    `env:"MAX_ATTEMPTS" envDefault:"5"`
	MaxGamesPerDay int    `env:"MAX_GAMES_PER_DAY" envDefault:"3"`
	QuotaTZ        string `env:"QUOTA_TZ"`
}

// Load parses the environment. Values must already be in the process
// environment (main loads .env first).
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("MAX_ATTEMPTS must be at least 1")
	}
	if c.MaxGamesPerDay < 1 {
		return errors.New("MAX_GAMES_PER_DAY must be at least 1")
	}
	if c.JWTExpiresDays < 1 {
		return errors.New("JWT_EXPIRES_DAYS must be at least 1")
	}
	if c.Production() && c.JWTSecret == devSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if _, err := c.QuotaLocation(); err != nil {
		return err
	}
	return nil
}

// Production reports NODE_ENV=production.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// Rules maps the limits onto the engine's rules.
func (c Config) Rules() game.Rules {
	r := game.DefaultRules()
	r.MaxAttempts = c.MaxAttempts
	r.MaxGamesPerDay = c.MaxGamesPerDay
	return r
}

// QuotaLocation is the zone whose calendar days bound the daily quota.
// Empty QUOTA_TZ means the server's local zone.
func (c Config) QuotaLocation() (*time.Location, error) {
	if c.QuotaTZ == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.QuotaTZ)
	if err != nil {
		return nil, fmt.Errorf("QUOTA_TZ: %w", err)
	}
	return loc, nil
}

// TokenTTL is the auth token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
