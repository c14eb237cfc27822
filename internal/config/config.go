package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort        string
	DBPath         string
	VectorDBPath   string
	UploadDir      string
	LogLevel       slog.Level
	LogFormat      string
	ChunkSize      int
	ChunkOverlap   int
	JobWorkers     int
	JobQueueSize   int
	TableCacheSize int
	SweepInterval  int // minutes between orphan-table sweeps, 0 disables

	// Embedding provider credentials. A provider is available only when its
	// credentials are present.
	GoogleAPIKey    string
	GoogleBaseURL   string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AzureAPIKey     string
	AzureEndpoint   string
	AzureAPIVersion string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory, it is loaded automatically;
// environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:      getEnv("API_PORT", "9000"),
		DBPath:       getEnv("DB_PATH", "./data/docbase.db"),
		VectorDBPath: getEnv("VECTOR_DB_PATH", "./data/docbase-vectors.db"),
		UploadDir:    getEnv("UPLOAD_DIR", "./data/uploads"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),

		GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),
		GoogleBaseURL:   getEnv("GOOGLE_BASE_URL", "https://generativelanguage.googleapis.com"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	intFields := []struct {
		name string
		def  int
		min  int
		dst  *int
	}{
		{"CHUNK_SIZE", 300, 1, &cfg.ChunkSize},
		{"CHUNK_OVERLAP", 50, 0, &cfg.ChunkOverlap},
		{"JOB_WORKERS", 4, 1, &cfg.JobWorkers},
		{"JOB_QUEUE_SIZE", 256, 1, &cfg.JobQueueSize},
		{"TABLE_CACHE_SIZE", 512, 1, &cfg.TableCacheSize},
		{"SWEEP_INTERVAL_MINUTES", 60, 0, &cfg.SweepInterval},
	}
	for _, f := range intFields {
		v, err := getEnvInt(f.name, f.def)
		if err != nil {
			return nil, err
		}
		if v < f.min {
			return nil, fmt.Errorf("%s must be at least %d, got %d", f.name, f.min, v)
		}
		*f.dst = v
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	// Create data and upload directories if they don't exist.
	for _, dir := range []string{filepath.Dir(cfg.DBPath), filepath.Dir(cfg.VectorDBPath), cfg.UploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}
