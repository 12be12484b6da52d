// Package config loads runtime settings from an optional YAML file overlaid
// with DOMINO_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL"`
	Store    StoreConfig    `yaml:"store"     envPrefix:"STORE_"`
	Redis    RedisConfig    `yaml:"redis"     envPrefix:"REDIS_"`
	Security SecurityConfig `yaml:"security"  envPrefix:"SECURITY_"`
	HTTP     HTTPConfig     `yaml:"http"      envPrefix:"HTTP_"`
}

// StoreConfig selects where snapshots live.
type StoreConfig struct {
	Backend string        `yaml:"backend"  env:"BACKEND"`
	Dir     string        `yaml:"dir"      env:"DIR"`
	LockTTL time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
}

// RedisConfig is used by the redis backend.
type RedisConfig struct {
	Addr       string        `yaml:"addr"        env:"ADDR"`
	Password   string        `yaml:"password"    env:"PASSWORD"`
	DB         int           `yaml:"db"          env:"DB"`
	Prefix     string        `yaml:"prefix"      env:"PREFIX"`
	TTL        time.Duration `yaml:"ttl"         env:"TTL"`
	LockPrefix string        `yaml:"lock_prefix" env:"LOCK_PREFIX"`
}

// SecurityConfig enables the store middleware.
type SecurityConfig struct {
	// EncryptionKey is a base64 encoded 32 byte key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	// FallbackKeys decrypt data written before a key rotation.
	FallbackKeys []string `yaml:"fallback_keys" env:"FALLBACK_KEYS" envSeparator:","`
	// PIIPatterns are regular expressions over field names whose values are masked on save.
	PIIPatterns []string `yaml:"pii_patterns" env:"PII_PATTERNS" envSeparator:","`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port         string        `yaml:"port"           env:"PORT"`
	ListCacheTTL time.Duration `yaml:"list_cache_ttl" env:"LIST_CACHE_TTL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     ".domino/snapshots",
			LockTTL: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			Prefix:     "domino:snapshot:",
			LockPrefix: "domino:",
		},
		HTTP: HTTPConfig{
			Port:         "8080",
			ListCacheTTL: 5 * time.Second,
		},
	}
}

// Load reads path (skipped when empty) over the defaults, then applies
// DOMINO_* environment variables, then validates the result.
func Load(path string) (Config, error) {
	return load(path, env.Options{Prefix: "DOMINO_"})
}

func load(path string, opts env.Options) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be expressed in the tags.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.Dir == "" {
		return fmt.Errorf("%w: store dir is required for the file backend", ErrInvalid)
	}
	if c.Store.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis addr is required for the redis backend", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, _, err := c.Security.Keys(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (s SecurityConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("%w: fallback keys without an encryption key", ErrInvalid)
		}
		return nil, nil, nil
	}
	active, err = decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: not base64: %v", ErrInvalid, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalid, len(key))
	}
	return key, nil
}
