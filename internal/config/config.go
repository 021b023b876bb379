// Package config loads the lattice configuration: defaults, then an optional
// YAML file, then LATTICE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
)

// Translation store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the full configuration.
type Config struct {
	Log          LogConfig            `yaml:"log" mapstructure:"log"`
	ScratchDir   string               `yaml:"scratch_dir" mapstructure:"scratch_dir"`
	Import       domain.ImportOptions `yaml:"import" mapstructure:"import"`
	Translations TranslationConfig    `yaml:"translations" mapstructure:"translations"`
	Metrics      MetricsConfig        `yaml:"metrics" mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TranslationConfig selects where translation tables live.
type TranslationConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`

	// File backend.
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`

	// Redis backend.
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
	Prefix        string        `yaml:"prefix" mapstructure:"prefix"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// MetricsConfig controls the Prometheus textfile written after each command.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Default returns a working configuration that needs no file.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: logging.FormatText},
		Import: domain.DefaultImportOptions(),
		Translations: TranslationConfig{
			Backend:   BackendFile,
			Dir:       ".lattice/translations",
			Format:    "json",
			RedisAddr: "localhost:6379",
			Prefix:    "lattice:translation:",
		},
		Metrics: MetricsConfig{Textfile: "lattice.prom"},
	}
}

// envKeys maps environment variables to configuration paths.
var envKeys = map[string]string{
	"LATTICE_LOG_LEVEL":            "log.level",
	"LATTICE_LOG_FORMAT":           "log.format",
	"LATTICE_SCRATCH_DIR":          "scratch_dir",
	"LATTICE_LOAD_AUDIO":           "import.load_audio",
	"LATTICE_LOAD_IMAGES":          "import.load_images",
	"LATTICE_TRANSLATIONS_BACKEND": "translations.backend",
	"LATTICE_TRANSLATIONS_DIR":     "translations.dir",
	"LATTICE_TRANSLATIONS_FORMAT":  "translations.format",
	"LATTICE_REDIS_ADDR":           "translations.redis_addr",
	"LATTICE_REDIS_PASSWORD":       "translations.redis_password",
	"LATTICE_REDIS_DB":             "translations.redis_db",
	"LATTICE_REDIS_PREFIX":         "translations.prefix",
	"LATTICE_REDIS_TTL":            "translations.ttl",
	"LATTICE_METRICS_ENABLED":      "metrics.enabled",
	"LATTICE_METRICS_TEXTFILE":     "metrics.textfile",
}

// Load reads the configuration. An empty path skips the file; a path that does
// not exist is an error.
func Load(path string) (*Config, error) {
	raw := make(map[string]any)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = make(map[string]any)
		}
	}
	for env, key := range envKeys {
		if v, ok := os.LookupEnv(env); ok {
			set(raw, strings.Split(key, "."), v)
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// set writes value at path, creating intermediate maps.
func set(m map[string]any, path []string, value string) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	switch c.Translations.Backend {
	case BackendFile:
		if c.Translations.Format != "json" && c.Translations.Format != "yaml" {
			return fmt.Errorf("invalid translation file format %q", c.Translations.Format)
		}
	case BackendRedis:
		if c.Translations.RedisAddr == "" {
			return fmt.Errorf("redis backend needs translations.redis_addr")
		}
	default:
		return fmt.Errorf("unknown translation backend %q", c.Translations.Backend)
	}
	return nil
}
