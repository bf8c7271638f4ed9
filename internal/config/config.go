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

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Generation providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Template sources.
const (
	TemplatesEmbedded = "embedded"
	TemplatesFile     = "file"
	TemplatesRedis    = "redis"
)

// Config holds the surveyd configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Generation GenerationConfig `yaml:"generation"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // mongo, sqlite, memory (default: mongo)
	URI              string `yaml:"uri"`
	Name             string `yaml:"name"`
	Collection       string `yaml:"collection"`
	Path             string `yaml:"path"` // sqlite only
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// GenerationConfig holds text-generation backend settings.
type GenerationConfig struct {
	Provider         string `yaml:"provider"` // gemini, openai (default: gemini)
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	MaxRetries       *int   `yaml:"max_retries"` // nil = default, 0 = no retries
	RetryBaseDelayMs int    `yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int    `yaml:"retry_max_delay_ms"`
}

// TemplatesConfig selects where prompt templates are read from.
type TemplatesConfig struct {
	Source string      `yaml:"source"` // embedded, file, redis (default: embedded)
	Dir    string      `yaml:"dir"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds the key-value template store settings.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// Timeout returns the generation request timeout.
func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}

// Retries returns the configured retry count.
func (g GenerationConfig) Retries() int {
	if g.MaxRetries == nil {
		return 0
	}
	return *g.MaxRetries
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.Name == "" {
		c.Database.Name = "survey_db"
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "surveys"
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join("data", "surveyd.db")
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Generation.Provider == "" {
		c.Generation.Provider = ProviderGemini
	}
	if c.Generation.Model == "" {
		switch c.Generation.Provider {
		case ProviderOpenAI:
			c.Generation.Model = "gpt-4o-mini"
		default:
			c.Generation.Model = "gemini-1.5-flash"
		}
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 30
	}
	if c.Generation.MaxRetries == nil {
		n := 2
		c.Generation.MaxRetries = &n
	}
	if c.Generation.RetryBaseDelayMs <= 0 {
		c.Generation.RetryBaseDelayMs = 500
	}
	if c.Generation.RetryMaxDelayMs <= 0 {
		c.Generation.RetryMaxDelayMs = 5000
	}

	if c.Templates.Source == "" {
		c.Templates.Source = TemplatesEmbedded
	}
	if c.Templates.Redis.KeyPrefix == "" {
		c.Templates.Redis.KeyPrefix = "surveyd:template:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for driver %q", DriverMongo)
		}
	case DriverSQLite, DriverMemory:
		// ok
	default:
		return fmt.Errorf("database.driver must be one of mongo, sqlite, memory, got %q", c.Database.Driver)
	}

	switch c.Generation.Provider {
	case ProviderGemini, ProviderOpenAI:
		// ok
	default:
		return fmt.Errorf("generation.provider must be \"gemini\" or \"openai\", got %q", c.Generation.Provider)
	}
	if c.Generation.APIKey == "" {
		return fmt.Errorf("generation.api_key is required")
	}
	if c.Generation.MaxRetries != nil && *c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must be >= 0, got %d", *c.Generation.MaxRetries)
	}
	if c.Generation.RetryMaxDelayMs < c.Generation.RetryBaseDelayMs {
		return fmt.Errorf("generation.retry_max_delay_ms (%d) must be >= retry_base_delay_ms (%d)",
			c.Generation.RetryMaxDelayMs, c.Generation.RetryBaseDelayMs)
	}

	switch c.Templates.Source {
	case TemplatesEmbedded:
		// ok
	case TemplatesFile:
		if c.Templates.Dir == "" {
			return fmt.Errorf("templates.dir is required for source %q", TemplatesFile)
		}
	case TemplatesRedis:
		if len(c.Templates.Redis.Addrs) == 0 {
			return fmt.Errorf("templates.redis.addrs is required for source %q", TemplatesRedis)
		}
	default:
		return fmt.Errorf("templates.source must be one of embedded, file, redis, got %q", c.Templates.Source)
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
