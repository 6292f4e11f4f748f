package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the api binary needs, sourced from the environment.
type Config struct {
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string
	HTTPAddr    string
	LogLevel    string
	LogFormat   string
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	// .env is a local-dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getenv("REDIS_ADDR", ""),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
