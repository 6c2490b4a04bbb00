package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort           string
	Environment          string
	SessionUserID        string
	DirectoryBaseURL     string
	ExternalStoreBaseURL string
	InternalStoreBaseURL string
	SuggestionBaseURL    string
	PollInterval         time.Duration
	FetchConcurrency     int
	HTTPTimeout          time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		SessionUserID:        getEnv("SESSION_USER_ID", "dashboard"),
		DirectoryBaseURL:     getEnv("DIRECTORY_BASE_URL", "http://localhost:8090"),
		ExternalStoreBaseURL: getEnv("EXTERNAL_STORE_BASE_URL", "http://localhost:8091"),
		InternalStoreBaseURL: getEnv("INTERNAL_STORE_BASE_URL", "http://localhost:8092"),
		SuggestionBaseURL:    getEnv("SUGGESTION_BASE_URL", "http://localhost:8093"),
		PollInterval:         time.Duration(getEnvAsInt64("POLL_INTERVAL_SECONDS", 30)) * time.Second,
		FetchConcurrency:     int(getEnvAsInt64("FETCH_CONCURRENCY", 8)),
		HTTPTimeout:          time.Duration(getEnvAsInt64("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
