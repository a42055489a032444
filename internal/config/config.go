package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values come from environment variables with sensible defaults.
//
// Environment Variables:
// HTTP:
// - HTTP_ADDR: listen address (default: :8080)
// - UI_STATIC_DIR: directory with the single-page UI (default: web)
// - UI_ENABLED: serve the UI (default: true)
//
// Uploads:
// - UPLOAD_DIR: managed directory for uploaded videos (default: data/uploads)
// - UPLOAD_MAX_MB: per-file upload cap in megabytes (default: 2048)
// - UPLOAD_TTL_MINUTES: age after which stale uploads are swept (default: 120)
// - SWEEP_CRON: cron expression for the stale-file sweeper (default: every 30m)
//
// Whisper:
// - WHISPER_BIN: whisper CLI binary (default: whisper)
// - WHISPER_MODEL_DIR: model download directory (default: empty, CLI default)
// - MODEL_CACHE_SIZE: loaded models kept resident (default: 5)
//
// Jobs:
// - JOB_WORKERS: concurrent transcription workers (default: 1)
// - DB_PATH: sqlite database path (default: data/transcriber.db)
//
// System:
// - LOG_LEVEL: debug|info|warn|error (default: info)

type Config struct {
	HTTP    HTTPConfig    `json:"http"`
	Upload  UploadConfig  `json:"upload"`
	Whisper WhisperConfig `json:"whisper"`
	Jobs    JobsConfig    `json:"jobs"`
	System  SystemConfig  `json:"system"`
}

// HTTPConfig holds the HTTP server configuration
type HTTPConfig struct {
	Addr        string `json:"addr"`
	UIStaticDir string `json:"ui_static_dir"`
	UIEnabled   bool   `json:"ui_enabled"`
}

// UploadConfig holds the upload directory configuration
type UploadConfig struct {
	Dir       string        `json:"dir"`
	MaxBytes  int64         `json:"max_bytes"`
	TTL       time.Duration `json:"ttl"`
	SweepCron string        `json:"sweep_cron"`
}

// WhisperConfig holds the whisper CLI configuration
type WhisperConfig struct {
	Binary        string `json:"binary"`
	ModelDir      string `json:"model_dir"`
	CacheCapacity int    `json:"cache_capacity"`
}

// JobsConfig holds the job queue configuration
type JobsConfig struct {
	Workers int    `json:"workers"`
	DBPath  string `json:"db_path"`
}

// SystemConfig holds the system configuration
type SystemConfig struct {
	LogLevel string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		HTTP: HTTPConfig{
			Addr:        getEnvString("HTTP_ADDR", ":8080"),
			UIStaticDir: getEnvString("UI_STATIC_DIR", "web"),
			UIEnabled:   getEnvBool("UI_ENABLED", true),
		},
		Upload: UploadConfig{
			Dir:       getEnvString("UPLOAD_DIR", "data/uploads"),
			MaxBytes:  int64(getEnvInt("UPLOAD_MAX_MB", 2048)) * 1024 * 1024,
			TTL:       time.Duration(getEnvInt("UPLOAD_TTL_MINUTES", 120)) * time.Minute,
			SweepCron: getEnvString("SWEEP_CRON", "*/30 * * * *"),
		},
		Whisper: WhisperConfig{
			Binary:        getEnvString("WHISPER_BIN", "whisper"),
			ModelDir:      getEnvString("WHISPER_MODEL_DIR", ""),
			CacheCapacity: getEnvInt("MODEL_CACHE_SIZE", 5),
		},
		Jobs: JobsConfig{
			Workers: getEnvInt("JOB_WORKERS", 1),
			DBPath:  getEnvString("DB_PATH", "data/transcriber.db"),
		},
		System: SystemConfig{
			LogLevel: getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_MB must be positive")
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("JOB_WORKERS must be positive")
	}
	if c.Jobs.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
