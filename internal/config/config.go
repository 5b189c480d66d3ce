// Package config loads anamnesis's project configuration: an optional
// .anamnesis/config.json plus an optional .anamnesis.yaml override layer,
// both overridable by the environment variables in spec §6.3.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"anamnesis/internal/logging"
)

// IntelligenceConfig controls the learning/intelligence layers.
type IntelligenceConfig struct {
	MaxFiles          int      `json:"max_files" yaml:"max_files"`
	IgnoredDirs       []string `json:"ignored_dirs" yaml:"ignored_dirs"`
	IgnoredSuffixes   []string `json:"ignored_suffixes" yaml:"ignored_suffixes"`
	ParseTimeoutMS    int      `json:"parse_timeout_ms" yaml:"parse_timeout_ms"`
	HotspotThreshold  int      `json:"hotspot_threshold" yaml:"hotspot_threshold"`
	GodClassThreshold int      `json:"god_class_threshold" yaml:"god_class_threshold"`
	LongMethodLOC     int      `json:"long_method_loc" yaml:"long_method_loc"`
	MinConfidence     float64  `json:"min_confidence" yaml:"min_confidence"`
}

// WatchingConfig controls the (boundary-only) file watcher.
type WatchingConfig struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	DebounceMS    int      `json:"debounce_ms" yaml:"debounce_ms"`
	WatchedGlobs  []string `json:"watched_globs" yaml:"watched_globs"`
}

// MCPConfig controls the tool-server boundary.
type MCPConfig struct {
	ServerName string `json:"server_name" yaml:"server_name"`
}

// StorageConfig controls the embedded database location and tuning.
type StorageConfig struct {
	DBFilename        string `json:"db_filename" yaml:"db_filename"`
	BusyTimeoutMS     int    `json:"busy_timeout_ms" yaml:"busy_timeout_ms"`
	ConnectionPool    int    `json:"connection_pool" yaml:"connection_pool"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode" yaml:"debug_mode"`
	Level      string          `json:"level" yaml:"level"`
	Categories map[string]bool `json:"categories" yaml:"categories"`
}

// Config is the top-level project configuration, persisted at
// .anamnesis/config.json (spec §6.2).
type Config struct {
	Version      string             `json:"version" yaml:"version"`
	Intelligence IntelligenceConfig `json:"intelligence" yaml:"intelligence"`
	Watching     WatchingConfig     `json:"watching" yaml:"watching"`
	MCP          MCPConfig          `json:"mcp" yaml:"mcp"`
	Storage      StorageConfig      `json:"storage" yaml:"storage"`
	Logging      LoggingConfig      `json:"logging" yaml:"logging"`

	// BatchSize, MaxConcurrent and RequestTimeout are overridable by env
	// vars independent of the on-disk config (spec §6.3).
	BatchSize      int `json:"batch_size" yaml:"batch_size"`
	MaxConcurrent  int `json:"max_concurrent" yaml:"max_concurrent"`
	RequestTimeoutMS int `json:"request_timeout_ms" yaml:"request_timeout_ms"`

	PerformanceLogging bool `json:"performance_logging" yaml:"performance_logging"`
	MCPServerMode      bool `json:"-" yaml:"-"`
}

var defaultIgnoredDirs = []string{
	"node_modules", ".git", "dist", "build", "target", "__pycache__",
	".venv", "venv", ".next", ".nuxt", "out", "vendor", ".anamnesis",
}

var defaultIgnoredSuffixes = []string{".min.js", ".bundle.js", ".map"}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Intelligence: IntelligenceConfig{
			MaxFiles:          1000,
			IgnoredDirs:       append([]string{}, defaultIgnoredDirs...),
			IgnoredSuffixes:   append([]string{}, defaultIgnoredSuffixes...),
			ParseTimeoutMS:    30_000,
			HotspotThreshold:  10,
			GodClassThreshold: 20,
			LongMethodLOC:     50,
			MinConfidence:     0.5,
		},
		Watching: WatchingConfig{
			Enabled:    true,
			DebounceMS: 500,
		},
		MCP: MCPConfig{ServerName: "anamnesis"},
		Storage: StorageConfig{
			DBFilename:     "anamnesis.db",
			BusyTimeoutMS:  30_000,
			ConnectionPool: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		BatchSize:        50,
		MaxConcurrent:    10,
		RequestTimeoutMS: 30_000,
	}
}

// Load reads .anamnesis/config.json under projectRoot (optional: defaults
// are used if it is absent), layers an optional .anamnesis.yaml on top, then
// applies environment variable overrides.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()

	jsonPath := filepath.Join(projectRoot, ".anamnesis", "config.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", jsonPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: reading %s: %w", jsonPath, err)
	}

	yamlPath := filepath.Join(projectRoot, ".anamnesis.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: reading %s: %w", yamlPath, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes cfg to .anamnesis/config.json under projectRoot.
func Save(projectRoot string, cfg *Config) error {
	dir := filepath.Join(projectRoot, ".anamnesis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// applyEnvOverrides implements spec §6.3. Invalid integers log a warning
// and keep the existing value.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ANAMNESIS_DB_FILENAME"); v != "" {
		if filepath.Base(v) != v {
			logging.Get(logging.CategoryServices).Warn("ANAMNESIS_DB_FILENAME contains path separators, ignoring: %s", v)
		} else {
			c.Storage.DBFilename = v
		}
	}
	c.BatchSize = envInt("ANAMNESIS_BATCH_SIZE", c.BatchSize)
	c.MaxConcurrent = envInt("ANAMNESIS_MAX_CONCURRENT", c.MaxConcurrent)
	c.RequestTimeoutMS = envInt("ANAMNESIS_REQUEST_TIMEOUT", c.RequestTimeoutMS)

	if v := os.Getenv("ANAMNESIS_LOG_LEVEL"); v != "" {
		switch v {
		case "error", "warn", "info", "debug":
			c.Logging.Level = v
		default:
			logging.Get(logging.CategoryServices).Warn("invalid ANAMNESIS_LOG_LEVEL %q, keeping %q", v, c.Logging.Level)
		}
	}

	if v := os.Getenv("ANAMNESIS_PERFORMANCE_LOGGING"); v != "" {
		c.PerformanceLogging = envBool(v, c.PerformanceLogging)
	}
	if v := os.Getenv("MCP_SERVER"); v != "" {
		c.MCPServerMode = envBool(v, c.MCPServerMode)
	}
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Get(logging.CategoryServices).Warn("invalid integer for %s=%q, keeping default %d", name, v, fallback)
		return fallback
	}
	return n
}

func envBool(v string, fallback bool) bool {
	switch v {
	case "1", "true", "True", "TRUE":
		return true
	case "0", "false", "False", "FALSE":
		return false
	default:
		return fallback
	}
}
