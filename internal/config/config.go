package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration for the service, sourced from the
// environment (optionally seeded from a .env file).
type Config struct {
	ServerAddress string

	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig

	// Retrieval
	TopK int

	// Document splitting
	SplitLength  int
	SplitOverlap int

	// Session management
	SessionTimeoutSeconds int
	MaxMessagesPerSession int

	// File upload
	MaxFileSize int64

	// Indexing
	IndexWorkers   int
	EmbedBatchSize int

	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

type LLMConfig struct {
	Provider   string
	BaseURL    string
	APIKey     string
	APIVersion string
	ByAzure    bool

	ChatModel          string
	EmbeddingModel     string
	EmbeddingDimension int

	Temperature      float32
	MaxTokens        int
	TopP             float32
	PresencePenalty  float32
	FrequencyPenalty float32
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8000"),
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite3"),
			DSN:    getEnv("DB_DSN", "ragchat.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			Provider:           getEnv("LLM_PROVIDER", "openai"),
			BaseURL:            getEnv("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			APIVersion:         getEnv("OPENAI_API_VERSION", "2023-12-01-preview"),
			ByAzure:            getEnvAsBool("OPENAI_BY_AZURE", true),
			ChatModel:          getEnv("CHAT_MODEL", "gpt-4o"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			Temperature:        getEnvAsFloat32("TEMPERATURE", 0.1),
			MaxTokens:          getEnvAsInt("MAX_TOKENS", 2000),
			TopP:               getEnvAsFloat32("TOP_P", 0.9),
			PresencePenalty:    getEnvAsFloat32("PRESENCE_PENALTY", 0.1),
			FrequencyPenalty:   getEnvAsFloat32("FREQUENCY_PENALTY", 0.1),
		},
		TopK:                  getEnvAsInt("TOP_K", 25),
		SplitLength:           getEnvAsInt("SPLIT_LENGTH", 800),
		SplitOverlap:          getEnvAsInt("SPLIT_OVERLAP", 200),
		SessionTimeoutSeconds: getEnvAsInt("SESSION_TIMEOUT", 3600),
		MaxMessagesPerSession: getEnvAsInt("MAX_MESSAGES_PER_SESSION", 20),
		MaxFileSize:           int64(getEnvAsInt("MAX_FILE_SIZE", 52428800)),
		IndexWorkers:          getEnvAsInt("INDEX_WORKERS", 4),
		EmbedBatchSize:        getEnvAsInt("EMBED_BATCH_SIZE", 16),
		AllowedOrigins:        getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
