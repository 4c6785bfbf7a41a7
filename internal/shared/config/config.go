package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tire-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	LLMProvider     string
	LLMModel        string
	OpenAIAPIKey    string
	DatabaseURL     string

	VisionEndpoint      string
	VisionKey           string
	VisionMinConfidence float64

	BranchTimeout time.Duration
	CacheSize     int
	CacheTTL      time.Duration

	RateLimitAnalyzeRPS   float64
	RateLimitAnalyzeBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; existing env wins.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := getEnv("DATABASE_URL", "")
	if env == "production" && dbURL == "" {
		telemetry.Error("config.missing", map[string]any{"key": "DATABASE_URL"})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:        getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DatabaseURL:     dbURL,

		VisionEndpoint:      getEnv("VISION_ENDPOINT", ""),
		VisionKey:           getEnv("VISION_KEY", ""),
		VisionMinConfidence: getEnvFloat("VISION_MIN_CONFIDENCE", 0.3),

		BranchTimeout: getEnvDuration("ANALYSIS_BRANCH_TIMEOUT", 45*time.Second),
		CacheSize:     getEnvInt("CACHE_SIZE", 256),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Minute),

		RateLimitAnalyzeRPS:   getEnvFloat("RATE_LIMIT_ANALYZE_RPS", 0.2),
		RateLimitAnalyzeBurst: getEnvInt("RATE_LIMIT_ANALYZE_BURST", 5),
	}
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		// Missing files are expected outside local development.
		_ = godotenv.Load(path)
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	telemetry.Error("config.invalid", map[string]any{"key": key, "value": raw})
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
