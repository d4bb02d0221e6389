package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	CacheBackendTable = "table"
	CacheBackendRedis = "redis"
)

type Config struct {
	HTTPPort string
	LogLevel string
	LogMode  string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret       string
	SessionTTLHours int

	LLMProvider       string
	LLMModel          string
	OpenRouterAPIKey  string
	OpenRouterAPIURL  string
	GeminiAPIKey      string
	GeminiModel       string
	LLMTimeoutSeconds int
	LLMTemperature    float64
	LLMMaxTokens      int

	CacheBackend       string
	RedisURL           string
	CacheExpiryDays    int
	MaxRequestsPerHour int
}

var AppConfig Config

// LoadConfig populates AppConfig. A missing secret is returned as an error so
// the caller can halt startup.
func LoadConfig() error {
	// .env is optional; the process environment wins either way.
	_ = godotenv.Load()

	cfg, err := Load()
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

// Load reads the configuration from the environment without touching .env files.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogMode:  getEnv("LOG_MODE", "dev"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:    getEnv("DATABASE_URL", "third_voice.db"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		SessionTTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),

		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter)),
		LLMModel:          getEnv("LLM_MODEL", "google/gemma-2-9b-it:free"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterAPIURL:  getEnv("OPENROUTER_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		LLMTimeoutSeconds: getEnvAsInt("LLM_TIMEOUT_SECONDS", 25),
		LLMTemperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 500),

		CacheBackend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendTable)),
		RedisURL:           getEnv("REDIS_URL", ""),
		CacheExpiryDays:    getEnvAsInt("CACHE_EXPIRY_DAYS", 1),
		MaxRequestsPerHour: getEnvAsInt("MAX_REQUESTS_PER_HOUR", 100),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	switch cfg.LLMProvider {
	case ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is required")
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	switch cfg.CacheBackend {
	case CacheBackendTable:
	case CacheBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required when CACHE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}

	if cfg.DatabaseDriver != "sqlite3" && cfg.DatabaseDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
