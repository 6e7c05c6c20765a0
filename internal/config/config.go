package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig        `yaml:"server"`
	Database DatabaseConfig      `yaml:"database"`
	Oracle   OracleConfig        `yaml:"oracle"`
	YouTube  YouTubeConfig       `yaml:"youtube"`
	Auth     AuthConfig          `yaml:"auth"`
	Worker   WorkerConfig        `yaml:"worker"`
	Log      LogConfig           `yaml:"log"`
	Export   ExportStorageConfig `yaml:"export"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OracleConfig contains LLM oracle settings.
type OracleConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
	Model  string `yaml:"model"`
}

// YouTubeConfig contains YouTube Data API settings. An empty key
// disables metadata enrichment.
type YouTubeConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// AuthConfig contains authentication settings. An empty key leaves the
// API open, intended for local development only.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	PollInterval    Duration `yaml:"poll_interval"`
	MaxConcurrent   int      `yaml:"max_concurrent"`
	CleanupSchedule string   `yaml:"cleanup_schedule"`
	StaleAfter      Duration `yaml:"stale_after"`
	JobRetention    Duration `yaml:"job_retention"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExportStorageConfig contains S3-compatible report export settings.
// An empty bucket disables export.
type ExportStorageConfig struct {
	Bucket    string   `yaml:"bucket"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
	UseSSL    *bool    `yaml:"use_ssl"`
	URLExpiry Duration `yaml:"url_expiry"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("SHORTLENS_CONFIG_PATH", "config/shortlens.yaml")

	// Missing YAML file is not an error; defaults apply.
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(5 * time.Minute),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/shortlens.db",
		},
		Oracle: OracleConfig{
			Model: "gemini-2.0-flash",
		},
		Worker: WorkerConfig{
			PollInterval:    Duration(3 * time.Second),
			MaxConcurrent:   2,
			CleanupSchedule: "0 0 3 * * *",
			StaleAfter:      Duration(30 * time.Minute),
			JobRetention:    Duration(30 * 24 * time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Export: ExportStorageConfig{
			URLExpiry: Duration(24 * time.Hour),
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("SHORTLENS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SHORTLENS_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("SHORTLENS_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("SHORTLENS_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("SHORTLENS_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Oracle (GEMINI_API_KEY is the provider convention)
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}
	if v := os.Getenv("SHORTLENS_ORACLE_MODEL"); v != "" {
		cfg.Oracle.Model = v
	}

	// YouTube
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		cfg.YouTube.APIKey = v
	}

	// Auth
	if v := os.Getenv("SHORTLENS_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}

	// Worker
	if v := os.Getenv("SHORTLENS_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.PollInterval = Duration(d)
		}
	}
	if v := os.Getenv("SHORTLENS_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.MaxConcurrent = n
		}
	}
	if v := os.Getenv("SHORTLENS_CLEANUP_SCHEDULE"); v != "" {
		cfg.Worker.CleanupSchedule = v
	}
	if v := os.Getenv("SHORTLENS_STALE_AFTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.StaleAfter = Duration(d)
		}
	}
	if v := os.Getenv("SHORTLENS_JOB_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.JobRetention = Duration(d)
		}
	}

	// Log
	if v := os.Getenv("SHORTLENS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SHORTLENS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Export
	if v := os.Getenv("SHORTLENS_EXPORT_BUCKET"); v != "" {
		cfg.Export.Bucket = v
	}
	if v := os.Getenv("SHORTLENS_S3_ENDPOINT"); v != "" {
		cfg.Export.Endpoint = v
	}
	if v := os.Getenv("SHORTLENS_S3_REGION"); v != "" {
		cfg.Export.Region = v
	}
	if v := os.Getenv("SHORTLENS_S3_ACCESS_KEY"); v != "" {
		cfg.Export.AccessKey = v
	}
	if v := os.Getenv("SHORTLENS_S3_SECRET_KEY"); v != "" {
		cfg.Export.SecretKey = v
	}
	if v := os.Getenv("SHORTLENS_S3_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Export.UseSSL = &useSSL
	}
	if v := os.Getenv("SHORTLENS_S3_URL_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Export.URLExpiry = Duration(d)
		}
	}
}

// validate checks that required configuration values are set.
// In dev mode (SHORTLENS_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	if os.Getenv("SHORTLENS_DEV_MODE") == "true" {
		return nil
	}

	if c.Oracle.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if c.Worker.MaxConcurrent < 1 {
		return errors.New("worker.max_concurrent must be at least 1")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
