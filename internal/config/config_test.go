package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.ChunkTargetTokens != 450 || cfg.ChunkMinTokens != 300 || cfg.ChunkMaxTokens != 600 {
		t.Errorf("chunk defaults: %d/%d/%d", cfg.ChunkMinTokens, cfg.ChunkTargetTokens, cfg.ChunkMaxTokens)
	}
	if cfg.RetrievalTopK != 5 || cfg.RetrievalMaxTokens != 2000 {
		t.Errorf("retrieval defaults: %d/%d", cfg.RetrievalTopK, cfg.RetrievalMaxTokens)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("job ttl = %v", cfg.JobTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHUNK_TARGET_TOKENS", "500")
	t.Setenv("RETRIEVAL_MIN_SCORE", "0.25")
	t.Setenv("JOB_TTL", "30m")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.ChunkTargetTokens != 500 {
		t.Errorf("chunk target = %d", cfg.ChunkTargetTokens)
	}
	if cfg.RetrievalMinScore != 0.25 {
		t.Errorf("min score = %f", cfg.RetrievalMinScore)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("job ttl = %v", cfg.JobTTL)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("MAX_QUEUE_SIZE", "-5")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("worker count = %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("queue size = %d", cfg.MaxQueueSize)
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.BookstoreAPIKey = "store-key"
	cfg.ServiceAPIKey = "svc-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.BookstoreAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing bookstore key")
	}

	cfg = Load()
	cfg.BookstoreAPIKey = "k"
	cfg.ServiceAPIKey = "k"
	cfg.ChunkMinTokens = 700
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for min > target")
	}
}
