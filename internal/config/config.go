package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Port            int
	AllowedOrigins  []string
	LogLevel        string
	LogDev          bool
	DatabaseURL     string
	ReadTimeout     time.Duration // 0 disables the liveness timeout
	MessageRate     float64
	MessageBurst    int
	ShutdownTimeout time.Duration
}

func Default() Config {
	return Config{
		Port:            3001,
		AllowedOrigins:  []string{"http://localhost:5173"},
		LogLevel:        "info",
		MessageRate:     20,
		MessageBurst:    40,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			errs = append(errs, fmt.Errorf("PORT: invalid port %q", v))
		}
		cfg.Port = p
	}
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("LOG_DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOG_DEV: %w", err))
		}
		cfg.LogDev = b
	}
	if v, ok := get("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := get("READ_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("READ_TIMEOUT: invalid duration %q", v))
		}
		cfg.ReadTimeout = d
	}
	if v, ok := get("MESSAGE_RATE"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			errs = append(errs, fmt.Errorf("MESSAGE_RATE: invalid rate %q", v))
		}
		cfg.MessageRate = r
	}
	if v, ok := get("MESSAGE_BURST"); ok {
		b, err := strconv.Atoi(v)
		if err != nil || b <= 0 {
			errs = append(errs, fmt.Errorf("MESSAGE_BURST: invalid burst %q", v))
		}
		cfg.MessageBurst = b
	}
	if v, ok := get("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: invalid duration %q", v))
		}
		cfg.ShutdownTimeout = d
	}

	if err := multierr.Combine(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
