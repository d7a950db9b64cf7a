package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Config is the estated runtime configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Backend BackendConfig `koanf:"backend"`
	Charts  ChartsConfig  `koanf:"charts"`
	Log     LogConfig     `koanf:"log"`
}

// ServerConfig controls the HTTP listener and mounted routes.
type ServerConfig struct {
	Addr     string `koanf:"addr"`
	BasePath string `koanf:"base_path"`
	MaxViews int    `koanf:"max_views"`
}

// BackendConfig points at the model service.
type BackendConfig struct {
	BaseURL     string        `koanf:"base_url"`
	PriceMapURL string        `koanf:"price_map_url"`
	APIKey      string        `koanf:"api_key"`
	Timeout     time.Duration `koanf:"timeout"`
	// Mock serves fixtures instead of calling the backend.
	Mock     bool   `koanf:"mock"`
	Fixtures string `koanf:"fixtures"`
}

// ChartsConfig tunes go-echarts output.
type ChartsConfig struct {
	Theme      string        `koanf:"theme"`
	AssetsHost string        `koanf:"assets_host"`
	Height     string        `koanf:"height"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if !c.Backend.Mock && c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend.base_url is required unless backend.mock is set"))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must not be negative"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the slog logger described by the log section.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(value string) (slog.Level, error) {
	if value == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
