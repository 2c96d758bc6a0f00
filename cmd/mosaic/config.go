package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix of every environment override (MOSAIC_WORKERS, ...).
const envPrefix = "MOSAIC"

// defaultConfigFile is read from the working directory when --config is unset.
const defaultConfigFile = "mosaic.yaml"

// Config validation errors
var (
	ErrInvalidStoreKind = errors.New("store.kind must be local, minio or s3")
	ErrMissingStoreRoot = errors.New("store.root cannot be empty for the local store")
	ErrMissingBucket    = errors.New("store.bucket cannot be empty for object stores")
	ErrMissingEndpoint  = errors.New("store.endpoint cannot be empty for the minio store")
	ErrInvalidWorkers   = errors.New("workers cannot be negative")
	ErrInvalidLimit     = errors.New("memory and IO limits cannot be negative")
	ErrInvalidLogFormat = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel  = errors.New("log_level must be debug, info, warn, or error")
)

// StoreConfig selects where tile libraries are kept.
type StoreConfig struct {
	Kind      string `yaml:"kind" envconfig:"KIND"`
	Root      string `yaml:"root,omitempty" envconfig:"ROOT"`
	Bucket    string `yaml:"bucket,omitempty" envconfig:"BUCKET"`
	Prefix    string `yaml:"prefix,omitempty" envconfig:"PREFIX"`
	Endpoint  string `yaml:"endpoint,omitempty" envconfig:"ENDPOINT"`
	Region    string `yaml:"region,omitempty" envconfig:"REGION"`
	AccessKey string `yaml:"access_key,omitempty" envconfig:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key,omitempty" envconfig:"SECRET_KEY"`
	Secure    bool   `yaml:"secure,omitempty" envconfig:"SECURE"`

	// CacheDir keeps remote libraries on local disk between runs.
	// Ignored for the local store.
	CacheDir      string `yaml:"cache_dir,omitempty" envconfig:"CACHE_DIR"`
	CacheMaxBytes int64  `yaml:"cache_max_bytes,omitempty" envconfig:"CACHE_MAX_BYTES"`
}

// Config is the in-memory representation of mosaic.yaml.
type Config struct {
	LogLevel           string      `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat          string      `yaml:"log_format" envconfig:"LOG_FORMAT"`
	Workers            int         `yaml:"workers,omitempty" envconfig:"WORKERS"`
	MemoryLimitBytes   int64       `yaml:"memory_limit_bytes,omitempty" envconfig:"MEMORY_LIMIT_BYTES"`
	IOLimitBytesPerSec int64       `yaml:"io_limit_bytes_per_sec,omitempty" envconfig:"IO_LIMIT_BYTES_PER_SEC"`
	Store              StoreConfig `yaml:"store" envconfig:"STORE"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "warn",
		LogFormat: "text",
		Store: StoreConfig{
			Kind: "local",
			Root: "libraries",
		},
	}
}

// LoadConfig builds the configuration: defaults, then the YAML file, then
// the dotenv files, then MOSAIC_* environment variables. An explicit path
// must exist; the default mosaic.yaml is optional.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("cannot read environment: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads each existing file into the process environment without
// overriding variables that are already set.
func loadDotEnv(files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("cannot load dotenv file %s: %w", f, err)
		}
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.MemoryLimitBytes < 0 || c.IOLimitBytesPerSec < 0 || c.Store.CacheMaxBytes < 0 {
		return ErrInvalidLimit
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.Store.Kind {
	case "local":
		if c.Store.Root == "" {
			return ErrMissingStoreRoot
		}
	case "minio":
		if c.Store.Endpoint == "" {
			return ErrMissingEndpoint
		}
		if c.Store.Bucket == "" {
			return ErrMissingBucket
		}
	case "s3":
		if c.Store.Bucket == "" {
			return ErrMissingBucket
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreKind, c.Store.Kind)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}
