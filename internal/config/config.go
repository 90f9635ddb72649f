package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings shared by the client commands and
// the relay server. LLM settings live in llm.Config.
type Config struct {
	// APIURL is the base URL of the relay that fronts the remote store.
	APIURL string

	// SyncDelay is the persistence debounce window.
	SyncDelay time.Duration

	// CatalogPath optionally replaces the embedded problem catalog.
	CatalogPath string

	LogLevel string
	Release  bool

	Server ServerConfig
}

// ServerConfig configures the relay server.
type ServerConfig struct {
	Port        string
	Backend     string // sqlite, mongo, redis, memory
	CORSOrigins []string

	MongoURI        string
	MongoDB         string
	MongoCollection string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Default returns a Config with defaults for local development.
func Default() Config {
	return Config{
		APIURL:    "http://localhost:3001",
		SyncDelay: time.Second,
		LogLevel:  "info",
		Server: ServerConfig{
			Port:            "3001",
			Backend:         "sqlite",
			CORSOrigins:     []string{"*"},
			MongoDB:         "CodeMaster",
			MongoCollection: "users",
			RedisAddr:       "localhost:6379",
		},
	}
}

// Load reads an optional .env file and then the environment, falling
// back to defaults for unset values. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	cfg := Default()

	cfg.APIURL = getEnv("CODEMASTER_API_URL", cfg.APIURL)
	cfg.SyncDelay = getEnvAsDuration("CODEMASTER_SYNC_DELAY", cfg.SyncDelay)
	cfg.CatalogPath = getEnv("CODEMASTER_CATALOG", cfg.CatalogPath)
	cfg.LogLevel = getEnv("CODEMASTER_LOG_LEVEL", cfg.LogLevel)
	cfg.Release = getEnvAsBool("CODEMASTER_RELEASE", cfg.Release)

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Backend = getEnv("CODEMASTER_STORE_BACKEND", cfg.Server.Backend)
	if origins := getEnv("CODEMASTER_CORS_ORIGINS", ""); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	cfg.Server.MongoURI = getEnv("MONGODB_URI", cfg.Server.MongoURI)
	cfg.Server.MongoDB = getEnv("MONGODB_DB", cfg.Server.MongoDB)
	cfg.Server.MongoCollection = getEnv("MONGODB_USERS_COLLECTION", cfg.Server.MongoCollection)
	cfg.Server.RedisAddr = getEnv("REDIS_ADDR", cfg.Server.RedisAddr)
	cfg.Server.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Server.RedisPassword)
	cfg.Server.RedisDB = getEnvAsInt("REDIS_DB", cfg.Server.RedisDB)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
