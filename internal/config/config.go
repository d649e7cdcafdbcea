package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// MongoDB
	MongoURL string
	MongoDB  string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey string

	// CORS
	AllowedOrigins []string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Env:            getEnvOrDefault("ENV", "development"),
		MongoURL:       mustGetEnv("MONGO_URL"),
		MongoDB:        getEnvOrDefault("MONGO_DB", "converse"),
		JWTSecret:      mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:   mustGetEnv("GEMINI_API_KEY"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvAsList splits a comma-separated env value, dropping empty entries.
func getEnvAsList(key, defaultVal string) []string {
	val := os.Getenv(key)
	if val == "" {
		val = defaultVal
	}

	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
