package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/safestudy/safestudy-go/internal/breach"
)

const (
	devJWTSecret = "dev-secret-change-in-production"
	devVaultKey  = "dev-vault-key-change-in-production"
)

var ErrInsecureDefaults = errors.New("default secrets are not allowed in production")

type Config struct {
	Port        string
	Env         string
	LogLevel    slog.Level
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration
	VaultKey    string

	BreachAPIURL  string
	BreachTimeout time.Duration
	BreachRPS     float64

	// RedisURL is optional; empty disables the shared rate limiter.
	RedisURL string
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		DatabaseDSN:  getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/safestudy?parseTime=true"),
		JWTSecret:    getEnv("JWT_SECRET", devJWTSecret),
		VaultKey:     getEnv("VAULT_KEY", devVaultKey),
		BreachAPIURL: getEnv("BREACH_API_URL", breach.DefaultBaseURL),
		RedisURL:     os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.BreachTimeout, err = getDuration("BREACH_TIMEOUT", breach.DefaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.BreachRPS, err = getFloat("BREACH_RPS", 10); err != nil {
		return Config{}, err
	}

	if cfg.IsProduction() && (cfg.JWTSecret == devJWTSecret || cfg.VaultKey == devVaultKey) {
		return Config{}, fmt.Errorf("%w: set JWT_SECRET and VAULT_KEY", ErrInsecureDefaults)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// NewLogger returns a JSON logger in production and a text logger elsewhere.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, v)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: must be a positive finite number", key, v)
	}
	return f, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return l, nil
}
