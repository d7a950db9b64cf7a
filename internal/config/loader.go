package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides. A double underscore separates
// sections: ESTATE_BACKEND__BASE_URL sets backend.base_url.
const EnvPrefix = "ESTATE_"

// Defaults are the lowest-precedence values.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":           ":8080",
		"server.base_path":      "/estate",
		"server.max_views":      256,
		"backend.base_url":      "http://localhost:5000",
		"backend.price_map_url": "",
		"backend.timeout":       "10s",
		"backend.mock":          false,
		"charts.theme":          "westeros",
		"charts.height":         "360px",
		"charts.cache_ttl":      "5m",
		"log.level":             "info",
		"log.format":            "text",
	}
}

// Load merges defaults, the optional YAML file and ESTATE_ env vars.
// Precedence (highest to lowest): env vars > config file > defaults
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
