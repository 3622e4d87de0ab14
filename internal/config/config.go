package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Extraction parameters file (YAML)
	ParamsFile string

	// NER service; empty URL selects the offline dictionary recognizer
	NERURL         string
	NERAPIKey      string
	NERTimeout     time.Duration
	NERBatchSize   int
	NERConcurrency int
	NERRateLimit   float64 // requests per second, 0 = unlimited

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment, after merging a .env file if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("BOARDKIN_API_KEY"),

		ParamsFile: envOr("PARAMS_FILE", "configs/params.yaml"),

		NERURL:         os.Getenv("NER_URL"),
		NERAPIKey:      os.Getenv("NER_API_KEY"),
		NERTimeout:     envDuration("NER_TIMEOUT", 60*time.Second),
		NERBatchSize:   envInt("NER_BATCH_SIZE", 32),
		NERConcurrency: envInt("NER_CONCURRENCY", 4),
		NERRateLimit:   envFloat("NER_RATE_LIMIT", 0),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: envOr("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
	}

	if cfg.NERBatchSize <= 0 {
		cfg.NERBatchSize = 32
	}
	if cfg.NERConcurrency <= 0 {
		cfg.NERConcurrency = 4
	}
	if cfg.NERTimeout <= 0 {
		cfg.NERTimeout = 60 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.NERRateLimit < 0 {
		cfg.NERRateLimit = 0
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("BOARDKIN_API_KEY is required")
	}
	if c.ParamsFile == "" {
		return fmt.Errorf("PARAMS_FILE is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
