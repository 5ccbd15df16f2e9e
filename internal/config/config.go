package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Classification assist (optional; heuristics-only when unset)
	AnthropicAPIKey string
	AnthropicModel  string
	AssistTimeout   time.Duration
	AssistParallel  int

	// Induction tuning
	BackgroundRatio float64
	DecorativeRatio float64
	CapacityMargin  float64

	// Segmentation bounds
	MinSections int
	MaxSections int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Schema cache
	SchemaCacheDir  string
	SchemaCacheSize int

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PPTWEAVER_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AssistTimeout:   envDuration("ASSIST_TIMEOUT", 20*time.Second),
		AssistParallel:  envInt("ASSIST_PARALLEL", 4),

		BackgroundRatio: envFloat("BACKGROUND_RATIO", 0.95),
		DecorativeRatio: envFloat("DECORATIVE_RATIO", 0.02),
		CapacityMargin:  envFloat("CAPACITY_MARGIN", 0.2),

		MinSections: envInt("MIN_SECTIONS", 3),
		MaxSections: envInt("MAX_SECTIONS", 14),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		SchemaCacheDir:  envOr("SCHEMA_CACHE_DIR", "./schema-cache"),
		SchemaCacheSize: envInt("SCHEMA_CACHE_SIZE", 64),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.AssistTimeout <= 0 {
		cfg.AssistTimeout = 20 * time.Second
	}
	if cfg.AssistParallel <= 0 {
		cfg.AssistParallel = 4
	}
	if cfg.BackgroundRatio <= 0 || cfg.BackgroundRatio > 1 {
		cfg.BackgroundRatio = 0.95
	}
	if cfg.DecorativeRatio < 0 || cfg.DecorativeRatio >= cfg.BackgroundRatio {
		cfg.DecorativeRatio = 0.02
	}
	if cfg.CapacityMargin < 0 || cfg.CapacityMargin > 1 {
		cfg.CapacityMargin = 0.2
	}
	if cfg.MinSections <= 0 {
		cfg.MinSections = 3
	}
	if cfg.MaxSections < cfg.MinSections {
		cfg.MaxSections = 14
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
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
	if cfg.SchemaCacheSize <= 0 {
		cfg.SchemaCacheSize = 64
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PPTWEAVER_API_KEY is required")
	}
	if c.SchemaCacheDir == "" {
		return fmt.Errorf("SCHEMA_CACHE_DIR is required")
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
