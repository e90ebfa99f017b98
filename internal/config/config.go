package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	FileHost FileHostConfig
	Ai       AIConfig
	Usage    UsageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	PersistTopicName   string
}

type DatabaseConfig struct {
	Connection string
}

type FileHostConfig struct {
	BaseURL string
	APIKey  string
}

type AIConfig struct {
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OllamaBaseURL string
	DefaultModel  string
	CompareLeft   string
	CompareRight  string
}

type UsageConfig struct {
	DailyDispatchLimit int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			PersistTopicName:   getEnv("PERSIST_CHAT_TOPIC_NAME", "PERSIST_CHAT_STATE"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		FileHost: FileHostConfig{
			BaseURL: getEnv("FILE_HOST_BASE_URL", "http://localhost:8090"),
			APIKey:  getEnv("FILE_HOST_API_KEY", ""),
		},
		Ai: AIConfig{
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			DefaultModel:  getEnv("DEFAULT_MODEL_ID", "gpt-4o-mini"),
			CompareLeft:   getEnv("DEFAULT_COMPARE_LEFT_MODEL_ID", "gpt-4o-mini"),
			CompareRight:  getEnv("DEFAULT_COMPARE_RIGHT_MODEL_ID", "llama3"),
		},
		Usage: UsageConfig{
			DailyDispatchLimit: getEnvAsInt("DAILY_DISPATCH_LIMIT", 50),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
