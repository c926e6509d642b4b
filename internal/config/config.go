package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Bookstore connection
	BookstoreURL    string
	BookstoreAPIKey string

	// Auth
	ServiceAPIKey string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentStore int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults (token estimates)
	ChunkTargetTokens  int
	ChunkMinTokens     int
	ChunkMaxTokens     int
	ChunkOverlapTokens int

	// Retrieval defaults
	RetrievalTopK      int
	RetrievalMinScore  float64
	RetrievalMaxTokens int

	// Job state
	JobTTL time.Duration

	// Retrieval stats window
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		BookstoreURL:    envOr("BOOKSTORE_URL", "http://localhost:8080"),
		BookstoreAPIKey: os.Getenv("BOOKSTORE_API_KEY"),

		ServiceAPIKey: os.Getenv("TEXTBOOKD_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentStore: envInt("MAX_CONCURRENT_STORE", 10),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkTargetTokens:  envInt("CHUNK_TARGET_TOKENS", 450),
		ChunkMinTokens:     envInt("CHUNK_MIN_TOKENS", 300),
		ChunkMaxTokens:     envInt("CHUNK_MAX_TOKENS", 600),
		ChunkOverlapTokens: envInt("CHUNK_OVERLAP_TOKENS", 50),

		RetrievalTopK:      envInt("RETRIEVAL_TOP_K", 5),
		RetrievalMinScore:  envFloat("RETRIEVAL_MIN_SCORE", 0.1),
		RetrievalMaxTokens: envInt("RETRIEVAL_MAX_TOKENS", 2000),

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkTargetTokens <= 0 {
		cfg.ChunkTargetTokens = 450
	}
	if cfg.ChunkMinTokens <= 0 {
		cfg.ChunkMinTokens = 300
	}
	if cfg.ChunkMaxTokens <= 0 {
		cfg.ChunkMaxTokens = 600
	}
	if cfg.ChunkOverlapTokens < 0 {
		cfg.ChunkOverlapTokens = 50
	}
	if cfg.RetrievalTopK <= 0 {
		cfg.RetrievalTopK = 5
	}
	if cfg.RetrievalMaxTokens <= 0 {
		cfg.RetrievalMaxTokens = 2000
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BookstoreAPIKey == "" {
		return fmt.Errorf("BOOKSTORE_API_KEY is required")
	}
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("TEXTBOOKD_API_KEY is required")
	}
	if c.ChunkMinTokens > c.ChunkTargetTokens || c.ChunkTargetTokens > c.ChunkMaxTokens {
		return fmt.Errorf("chunk token bounds must satisfy min <= target <= max")
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
