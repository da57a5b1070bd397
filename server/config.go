package server

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the web server.
type Config struct {
	// Addr is the listen address (":8000" by default).
	Addr string

	// GeminiAPIKey authenticates against the Gemini API. When empty the
	// server runs in offline mode and returns placeholder variants.
	GeminiAPIKey string

	// AnalysisModel and ImageModel override the provider defaults.
	AnalysisModel string
	ImageModel    string

	// MaxUploadBytes bounds the multipart form size held in memory.
	MaxUploadBytes int64

	// RequestTimeout bounds one full generate request.
	RequestTimeout time.Duration

	// Concurrency bounds parallel generation calls per request.
	Concurrency int

	// Rate limits per operation (0 disables the corresponding bucket).
	AnalyzeTokensPerMinute    int
	AnalyzeRequestsPerMinute  int
	GenerateTokensPerMinute   int
	GenerateRequestsPerMinute int

	// ArchiveDir, when set, enables archiving generated variants to disk.
	ArchiveDir string

	// ArchiveTTL is how long archived variants are kept before pruning.
	ArchiveTTL time.Duration
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset. A .env file is loaded first if present.
func Load() *Config {
	// .env is optional; a missing file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		AnalysisModel: os.Getenv("ANALYSIS_MODEL"),
		ImageModel:    os.Getenv("IMAGE_MODEL"),
		ArchiveDir:    os.Getenv("ARCHIVE_DIR"),
	}

	cfg.Addr = ":" + envOrDefault("PORT", "8000")

	cfg.MaxUploadBytes = int64(envInt("MAX_UPLOAD_BYTES", 20*1024*1024))
	cfg.RequestTimeout = time.Duration(envInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second
	cfg.Concurrency = envInt("GENERATE_CONCURRENCY", 4)

	cfg.AnalyzeTokensPerMinute = envInt("ANALYZE_TOKENS_PER_MINUTE", 250000)
	cfg.AnalyzeRequestsPerMinute = envInt("ANALYZE_REQUESTS_PER_MINUTE", 10)
	cfg.GenerateTokensPerMinute = envInt("GENERATE_TOKENS_PER_MINUTE", 250000)
	cfg.GenerateRequestsPerMinute = envInt("GENERATE_REQUESTS_PER_MINUTE", 20)

	cfg.ArchiveTTL = time.Duration(envInt("ARCHIVE_TTL_HOURS", 24)) * time.Hour

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
