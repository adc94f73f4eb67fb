// Package config resolves runtime settings from built-in defaults, an
// optional YAML config file, and FAKENEWS_* environment variables, in rising
// priority.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the effective runtime configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Model       ModelConfig       `mapstructure:"model"`
	Corrections CorrectionsConfig `mapstructure:"corrections"`
	Session     SessionConfig     `mapstructure:"session"`
	Rate        RateConfig        `mapstructure:"rate"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	// Addr is the host:port the server listens on.
	Addr string `mapstructure:"addr"`
	// BaseURL is where client commands reach a running server.
	BaseURL string `mapstructure:"base_url"`
	// APIToken, when set, requires Bearer authentication on /api routes.
	APIToken string `mapstructure:"api_token"`
}

type ModelConfig struct {
	// Dir holds vectorizer.json and classifier.json.
	Dir string `mapstructure:"dir"`
}

type CorrectionsConfig struct {
	// Path points at a corrections catalog artifact (.db or .yaml); empty
	// selects the compiled-in catalog.
	Path string `mapstructure:"path"`
}

type SessionConfig struct {
	// TTL is the sliding idle expiration of a session.
	TTL time.Duration `mapstructure:"ttl"`
	// MaxRecords caps one session's history; 0 means unbounded.
	MaxRecords int `mapstructure:"max_records"`
}

type RateConfig struct {
	// RPS of 0 disables rate limiting.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration: a localhost service reading
// model artifacts from ./models, with the compiled-in correction catalog.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:    "127.0.0.1:8750",
			BaseURL: "http://127.0.0.1:8750",
		},
		Model: ModelConfig{Dir: "models"},
		Session: SessionConfig{
			TTL: 30 * time.Minute,
		},
		Rate: RateConfig{RPS: 10, Burst: 20},
		Log:  LogConfig{Level: "info"},
	}
}

// Bind seeds v with the default values so partial config files and
// environments resolve against them.
func Bind(v *viper.Viper) {
	def := Default()
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.base_url", def.Server.BaseURL)
	v.SetDefault("server.api_token", def.Server.APIToken)
	v.SetDefault("model.dir", def.Model.Dir)
	v.SetDefault("corrections.path", def.Corrections.Path)
	v.SetDefault("session.ttl", def.Session.TTL)
	v.SetDefault("session.max_records", def.Session.MaxRecords)
	v.SetDefault("rate.rps", def.Rate.RPS)
	v.SetDefault("rate.burst", def.Rate.Burst)
	v.SetDefault("log.level", def.Log.Level)
}

// Load unmarshals and validates the effective configuration from v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if _, port, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr %q is not host:port: %w", c.Server.Addr, err)
	} else if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("server.addr port %q is out of range", port)
	}
	if strings.TrimSpace(c.Model.Dir) == "" {
		return fmt.Errorf("model.dir must not be empty")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.MaxRecords < 0 {
		return fmt.Errorf("session.max_records must not be negative, got %d", c.Session.MaxRecords)
	}
	if c.Rate.RPS < 0 {
		return fmt.Errorf("rate.rps must not be negative, got %v", c.Rate.RPS)
	}
	if c.Rate.RPS > 0 && c.Rate.Burst < 1 {
		return fmt.Errorf("rate.burst must be at least 1 when rate.rps is set, got %d", c.Rate.Burst)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name to its slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
