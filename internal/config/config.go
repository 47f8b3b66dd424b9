// Package config loads the typeguard server settings from TYPEGUARD_*
// environment variables, optionally seeded from .env files. Command-line
// flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "TYPEGUARD_"

// Sink backends.
const (
	SinkNone   = "none"
	SinkMemory = "memory"
	SinkFile   = "file"
	SinkRedis  = "redis"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when a parsed value is out of range
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the settings shared by serve and mcp.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	Port       int    `env:"PORT" envDefault:"8080"`
	Signatures string `env:"SIGNATURES"`

	Sink        string        `env:"SINK" envDefault:"memory"`
	ReportLimit int           `env:"REPORT_LIMIT" envDefault:"1000"`
	ReportTTL   time.Duration `env:"REPORT_TTL"`
	ReportsDir  string        `env:"REPORTS_DIR" envDefault:".typeguard/reports"`

	// Redact lists path patterns whose observed values are masked before
	// reports are stored.
	Redact []string `env:"REDACT" envSeparator:","`
	// ReportKey is a base64 AES-256 key. When set, stored reports are
	// encrypted; ReportFallbackKeys still decrypt older reports.
	ReportKey          string   `env:"REPORT_KEY"`
	ReportFallbackKeys []string `env:"REPORT_FALLBACK_KEYS" envSeparator:","`

	Redis RedisConfig `envPrefix:"REDIS_"`
}

// RedisConfig configures the redis report sink.
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"`
	Prefix   string `env:"PREFIX"`
}

// Load reads the configuration. With no files it loads ./.env when present;
// named files must exist. Variables already set in the environment win over
// file contents.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated and numeric settings.
func (c Config) Validate() error {
	switch c.Sink {
	case SinkNone, SinkMemory, SinkFile, SinkRedis:
	default:
		return fmt.Errorf("%w: sink %q (want none, memory, file or redis)", ErrInvalidConfig, c.Sink)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if c.ReportLimit < 0 {
		return fmt.Errorf("%w: report limit %d", ErrInvalidConfig, c.ReportLimit)
	}
	return nil
}
