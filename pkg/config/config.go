package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds global settings for the Verity gateway.
// All settings can be configured via environment variables or programmatically.
type Config struct {
	// === Server ===
	Port         string // HTTP listen port (default: "8080")
	MaxBodyBytes int    // Upload size limit in bytes (default: 15MB)

	// === Hosted Vision Model ===
	VisionAPIKey  string // API key for the hosted vision model (env: VERITY_VISION_API_KEY or OPENAI_API_KEY)
	VisionModel   string // Model identifier (default: "gpt-4o")
	VisionBaseURL string // Custom base URL for proxies or compatible gateways

	// === Local Model Artifacts ===
	ModelWeightsPath string // CNN weight artifact for the image classifier
	TextModelPath    string // ONNX model directory for the text classifier
	TextModelName    string // HuggingFace model name for auto-download
	OnnxLibraryPath  string // Directory holding libonnxruntime
	FaceCascadePath  string // pigo facefinder cascade

	// === Analyzer Tunables ===
	ParamsPath      string        // YAML file overriding analyzer tunables
	AnalyzerTimeout time.Duration // Per-analyzer deadline (default: 30s)
	MaxConcurrent   int           // Concurrent analysis requests (default: 16)

	// === Persistence ===
	DatabaseURL string        // Postgres URL for the history store (empty disables history)
	RedisAddr   string        // Redis address for the result cache (empty disables caching)
	CacheTTL    time.Duration // Result cache TTL (default: 1h)
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		Port:         GetEnv("VERITY_PORT", GetEnv("PORT", "8080")),
		MaxBodyBytes: GetEnvInt("VERITY_MAX_BODY_BYTES", 15*1024*1024),

		VisionAPIKey:  GetEnv("VERITY_VISION_API_KEY", os.Getenv("OPENAI_API_KEY")),
		VisionModel:   GetEnv("VERITY_VISION_MODEL", "gpt-4o"),
		VisionBaseURL: GetEnv("VERITY_VISION_BASE_URL", ""),

		ModelWeightsPath: GetEnv("VERITY_MODEL_WEIGHTS", "./models/cnn_weights.json"),
		TextModelPath:    GetEnv("VERITY_TEXT_MODEL_PATH", "./models/ai-text-detector"),
		TextModelName:    GetEnv("VERITY_TEXT_MODEL_NAME", ""),
		OnnxLibraryPath:  GetEnv("VERITY_ONNX_LIB_PATH", ""),
		FaceCascadePath:  GetEnv("VERITY_FACE_CASCADE", "./models/facefinder"),

		ParamsPath:      GetEnv("VERITY_PARAMS_PATH", ""),
		AnalyzerTimeout: time.Duration(GetEnvInt("VERITY_ANALYZER_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxConcurrent:   clampInt(GetEnvInt("VERITY_MAX_CONCURRENT", 16), 1, 1024),

		DatabaseURL: GetEnv("VERITY_DATABASE_URL", os.Getenv("DATABASE_URL")),
		RedisAddr:   GetEnv("VERITY_REDIS_ADDR", ""),
		CacheTTL:    time.Duration(GetEnvInt("VERITY_CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
}

// NewLocalConfig creates a Config for fully local operation: no hosted
// model, no persistence. Use for development or air-gapped deployments.
func NewLocalConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.VisionAPIKey = ""
	cfg.DatabaseURL = ""
	cfg.RedisAddr = ""
	return cfg
}

// clampInt ensures a value is within bounds.
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Validate checks the configuration for values that would misbehave at
// runtime. Missing optional backends are warnings, not errors; the
// ensemble degrades gracefully without them.
func (c *Config) Validate() error {
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("VERITY_MAX_BODY_BYTES too small: %d", c.MaxBodyBytes)
	}
	if c.AnalyzerTimeout < time.Second {
		return fmt.Errorf("VERITY_ANALYZER_TIMEOUT_MS below 1000: %v", c.AnalyzerTimeout)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("VERITY_PORT is not a number: %q", c.Port)
	}

	if c.VisionAPIKey == "" {
		log.Printf("[STARTUP] Warning: no vision API key set, hosted analysis disabled")
	}
	if c.DatabaseURL == "" {
		log.Printf("[STARTUP] Warning: no database URL set, history disabled")
	}
	if c.RedisAddr == "" {
		log.Printf("[STARTUP] Warning: no Redis address set, result caching disabled")
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}

// Helper functions for environment variable parsing.
// These are exported for use by other packages.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
