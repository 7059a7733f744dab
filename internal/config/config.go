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

// Config holds the bloomprobe API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
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

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string      `yaml:"driver"` // valkey, redis, minio, memory (default: valkey)
	Addrs            []string    `yaml:"addrs"`
	Username         string      `yaml:"username"`
	Password         string      `yaml:"password"`
	DB               int         `yaml:"db"`
	ReadinessTimeout int         `yaml:"readiness_timeout_sec"`
	Minio            MinioConfig `yaml:"minio"`
}

// MinioConfig holds object store settings for the minio driver.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Secure    bool   `yaml:"secure"`
}

// StorageConfig holds key layout and payload settings.
type StorageConfig struct {
	KeyPrefix   string `yaml:"key_prefix"`
	SerialWidth int    `yaml:"serial_width"` // 4 or 8 bytes per descriptor serial
	Compression string `yaml:"compression"`  // none, zstd, lz4
}

// PipelineConfig holds pre-filter settings.
type PipelineConfig struct {
	MaxBuckets  int    `yaml:"max_buckets"`
	Concurrency int    `yaml:"concurrency"` // 0 = unbounded
	KeyKind     string `yaml:"key_kind"`    // int, text
	TextCharset string `yaml:"text_charset"`
	StrictText  bool   `yaml:"strict_text"`
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "bloomprobe:"
	}
	if c.Storage.SerialWidth == 0 {
		c.Storage.SerialWidth = 8
	}
	if c.Storage.Compression == "" {
		c.Storage.Compression = "none"
	}
	if c.Pipeline.MaxBuckets <= 0 {
		c.Pipeline.MaxBuckets = 256
	}
	if c.Pipeline.KeyKind == "" {
		c.Pipeline.KeyKind = "int"
	}
	if c.Pipeline.TextCharset == "" {
		c.Pipeline.TextCharset = "utf-8"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverMinio:
		if c.Database.Minio.Endpoint == "" || c.Database.Minio.Bucket == "" {
			return fmt.Errorf("database.minio.endpoint and database.minio.bucket are required")
		}
	case DriverMemory:
		// ok
	default:
		return fmt.Errorf("database.driver must be one of redis, valkey, minio, memory, got %q", c.Database.Driver)
	}
	if c.Storage.SerialWidth != 4 && c.Storage.SerialWidth != 8 {
		return fmt.Errorf("storage.serial_width must be 4 or 8, got %d", c.Storage.SerialWidth)
	}
	switch c.Storage.Compression {
	case "none", "zstd", "lz4":
		// ok
	default:
		return fmt.Errorf("storage.compression must be none, zstd or lz4, got %q", c.Storage.Compression)
	}
	switch c.Pipeline.KeyKind {
	case "int", "text":
		// ok
	default:
		return fmt.Errorf("pipeline.key_kind must be \"int\" or \"text\", got %q", c.Pipeline.KeyKind)
	}
	if c.Pipeline.Concurrency < 0 {
		return fmt.Errorf("pipeline.concurrency must not be negative, got %d", c.Pipeline.Concurrency)
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
