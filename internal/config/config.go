package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Port           string
	MongoURI       string
	RedisURL       string
	AllowedOrigins string // comma-separated CORS allow-list
	JWTSecret      string

	// Results provider (Ergast-compatible read-only API)
	ErgastBaseURL  string
	Season         int
	FetchTimeoutMS int
	SyncHourUTC    int

	// Generative AI upstream
	GenAIBaseURL string
	GenAIAPIKey  string
	GenAIModel   string

	// Reference data seed
	SeedFile string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3001"),
		MongoURI:       getEnv("MONGODB_URI", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),

		ErgastBaseURL:  getEnv("ERGAST_BASE_URL", "https://api.jolpi.ca/ergast/f1"),
		Season:         getIntEnv("F1_SEASON", 2026),
		FetchTimeoutMS: getIntEnv("PROVIDER_TIMEOUT_MS", 10000),
		SyncHourUTC:    getIntEnv("SYNC_HOUR_UTC", 3),

		GenAIBaseURL: getEnv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GenAIAPIKey:  getEnv("GENAI_API_KEY", ""),
		GenAIModel:   getEnv("GENAI_MODEL", "gemini-2.0-flash"),

		SeedFile: getEnv("SEED_FILE", "seed/season_2026.json"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
