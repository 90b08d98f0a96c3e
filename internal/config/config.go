package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server      ServerConfig    `koanf:"server"`
	Environment string          `koanf:"environment"`
	Auth        AuthConfig      `koanf:"auth"`
	RateLimit   RateLimitConfig `koanf:"ratelimit"`
}

type ServerConfig struct {
	Port        int      `koanf:"port"`
	CORSOrigins []string `koanf:"cors_origins"`
}

type AuthConfig struct {
	Enabled bool `koanf:"enabled"`
}

type RateLimitConfig struct {
	Enabled       bool `koanf:"enabled"`
	MaxRequests   int  `koanf:"max_requests"`
	WindowSeconds int  `koanf:"window_seconds"`
}

// Load reads configuration from an optional YAML file (EDUCALC_CONFIG, or
// config.yaml when present) and EDUCALC_* environment variables, which win.
// Env names use "__" as the nesting separator: EDUCALC_SERVER__PORT maps to
// server.port, EDUCALC_RATELIMIT__MAX_REQUESTS to ratelimit.max_requests.
func Load() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv("EDUCALC_CONFIG")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("EDUCALC_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "EDUCALC_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("server.cors_origins") {
		k.Set("server.cors_origins", []string{"*"})
	}
	if !k.Exists("environment") {
		k.Set("environment", "development")
	}
	if !k.Exists("ratelimit.max_requests") {
		k.Set("ratelimit.max_requests", 100)
	}
	if !k.Exists("ratelimit.window_seconds") {
		k.Set("ratelimit.window_seconds", 60)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
