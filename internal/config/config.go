package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kpideck/internal/feed"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Feed     feed.Config
	DataPath string
	LogDir   string
	Listen   string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	retries, _ := strconv.Atoi(getEnv("FEED_MAX_RETRIES", "3"))
	retryDelaySecs, _ := strconv.Atoi(getEnv("FEED_RETRY_DELAY_SECONDS", "1"))
	cacheTTLSecs, _ := strconv.Atoi(getEnv("FEED_CACHE_TTL_SECONDS", "300"))

	cfg := &AppConfig{
		Feed: feed.Config{
			BaseURL:    getEnv("FEED_URL", ""),
			MaxRetries: retries,
			RetryDelay: time.Duration(retryDelaySecs) * time.Second,
			CacheTTL:   time.Duration(cacheTTLSecs) * time.Second,
		},
		DataPath: dataPath,
		LogDir:   logDir,
		Listen:   getEnv("LISTEN_ADDR", "127.0.0.1:8710"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
