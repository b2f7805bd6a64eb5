package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the searchr configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Queue    QueueConfig    `yaml:"queue"`
	Index    IndexConfig    `yaml:"index"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // extra output path, empty for stderr only
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds primary store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite file, ":memory:" for a throwaway store
}

// QueueConfig holds index queue broker settings.
type QueueConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Name             string   `yaml:"name"`
	KeyPrefix        string   `yaml:"key_prefix"`
	PollTimeoutSec   int      `yaml:"poll_timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds search index and pagination settings.
type IndexConfig struct {
	Dir             string `yaml:"dir"`
	BufferLimit     int    `yaml:"buffer_limit"`
	FlushPeriodSec  int    `yaml:"flush_period_sec"`
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
	QueryCacheSize  int    `yaml:"query_cache_size"`
}

// DaemonConfig holds index sync daemon settings.
type DaemonConfig struct {
	Embedded    *bool  `yaml:"embedded"`     // serve drains the queue itself (default: true)
	MetricsAddr string `yaml:"metrics_addr"` // indexd /metrics and /health listener
}

// IsEmbedded reports whether serve runs the daemon in-process.
func (d DaemonConfig) IsEmbedded() bool {
	return d.Embedded == nil || *d.Embedded
}

// PollTimeout returns the queue poll timeout.
func (q QueueConfig) PollTimeout() time.Duration {
	return time.Duration(q.PollTimeoutSec) * time.Second
}

// FlushPeriod returns the periodic flush interval.
func (i IndexConfig) FlushPeriod() time.Duration {
	return time.Duration(i.FlushPeriodSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/searchr.db"
	}
	if c.Queue.Name == "" {
		c.Queue.Name = "index"
	}
	if c.Queue.KeyPrefix == "" {
		c.Queue.KeyPrefix = "hotqueue:"
	}
	if c.Queue.PollTimeoutSec <= 0 {
		c.Queue.PollTimeoutSec = 1
	}
	if c.Queue.ReadinessTimeout <= 0 {
		c.Queue.ReadinessTimeout = 10
	}
	if c.Index.Dir == "" {
		c.Index.Dir = "data/index"
	}
	if c.Index.BufferLimit <= 0 {
		c.Index.BufferLimit = 10
	}
	if c.Index.FlushPeriodSec <= 0 {
		c.Index.FlushPeriodSec = 60
	}
	if c.Index.DefaultPageSize <= 0 {
		c.Index.DefaultPageSize = 25
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 100
	}
	if c.Index.QueryCacheSize == 0 {
		c.Index.QueryCacheSize = 512
	}
	if c.Daemon.MetricsAddr == "" {
		c.Daemon.MetricsAddr = ":9090"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Queue.Addrs) == 0 {
		return fmt.Errorf("queue.addrs is required")
	}
	if c.Queue.DB < 0 {
		return fmt.Errorf("queue.db must not be negative, got %d", c.Queue.DB)
	}
	if c.Index.DefaultPageSize > c.Index.MaxPageSize {
		return fmt.Errorf("index.default_page_size (%d) exceeds index.max_page_size (%d)",
			c.Index.DefaultPageSize, c.Index.MaxPageSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
