package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Addr            string
	DatabaseURL     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CORSOrigins     []string
	DigestInterval  time.Duration
}

// Load reads configuration from environment variables with sane
// defaults. A .env file is honored when present.
func Load() (Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getEnvOrDefault("ADDR", ":8080"),
		DatabaseURL:     getEnvOrDefault("DATABASE_URL", "task_manager.db"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET_KEY", "jwt-secret-change-in-production"),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		CORSOrigins:     splitOrigins(getEnvOrDefault("CORS_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
		DigestInterval:  parseInterval(strings.TrimSpace(os.Getenv("DIGEST_INTERVAL_HOURS"))),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
