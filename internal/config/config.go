package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the civicsearch API configuration.
type Config struct {
	HTTP      HTTPConfig              `yaml:"http"`
	Cache     CacheConfig             `yaml:"cache"`
	RateLimit RateLimitConfig         `yaml:"rate_limit"`
	Search    SearchConfig            `yaml:"search"`
	Sources   map[string]SourceConfig `yaml:"sources"`
	Auth      AuthConfig              `yaml:"auth"`
	Analytics AnalyticsConfig         `yaml:"analytics"`
	Logging   LoggingConfig           `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds inbound API authentication settings.
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

// CacheConfig holds shared-cache connection settings. Empty addrs runs the
// service on the process-local cache only.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	SourceTTLSec     int      `yaml:"source_ttl_sec"`
	CompositeTTLSec  int      `yaml:"composite_ttl_sec"`
}

// RateLimitConfig holds the inbound caller limit.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

// SearchConfig holds orchestrator settings.
type SearchConfig struct {
	// AdapterTimeoutSec overrides every adapter's own timeout hint when > 0.
	AdapterTimeoutSec int `yaml:"adapter_timeout_sec"`
}

// SourceConfig holds per-source adapter settings. APIKey is optional:
// adapters without one degrade to returning zero results.
type SourceConfig struct {
	Enabled    *bool   `yaml:"enabled"`
	BaseURL    string  `yaml:"base_url"`
	APIKey     string  `yaml:"api_key"`
	TimeoutSec int     `yaml:"timeout_sec"`
	RPS        float64 `yaml:"rps"`
}

// IsEnabled treats an absent flag as enabled.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// AnalyticsConfig holds the event publisher settings.
type AnalyticsConfig struct {
	Buffer int `yaml:"buffer"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		// Fan-out waits on the slowest permitted adapter timeout; keep the
		// write window above it.
		c.HTTP.WriteTimeoutSec = 35
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.SourceTTLSec <= 0 {
		c.Cache.SourceTTLSec = 3600
	}
	if c.Cache.CompositeTTLSec <= 0 {
		c.Cache.CompositeTTLSec = 3600
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 30
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
	if c.Analytics.Buffer <= 0 {
		c.Analytics.Buffer = 256
	}
	if c.Sources == nil {
		c.Sources = map[string]SourceConfig{}
	}
	// Unset ${VAR} expansions leave empty strings behind; an empty address
	// means "no shared cache", not a dial target.
	addrs := c.Cache.Addrs[:0]
	for _, a := range c.Cache.Addrs {
		if a != "" {
			addrs = append(addrs, a)
		}
	}
	c.Cache.Addrs = addrs
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.AdapterTimeoutSec < 0 {
		return fmt.Errorf("search.adapter_timeout_sec must not be negative")
	}
	for name, src := range c.Sources {
		if src.RPS < 0 {
			return fmt.Errorf("sources.%s.rps must not be negative", name)
		}
		if src.TimeoutSec < 0 {
			return fmt.Errorf("sources.%s.timeout_sec must not be negative", name)
		}
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
