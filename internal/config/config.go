package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Google       GoogleConfig
	Keys         APIKeys
	Ai           AIConfig
	Drive        DriveConfig
	Conversation ConversationConfig
	Timeouts     TimeoutConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CrawlLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	CrawlTopic         string // watermill topic for background index builds
}

type DatabaseConfig struct {
	Connection string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type APIKeys struct {
	GoogleGemini       string
	TokenEncryptionKey string // refresh tokens are sealed with a key derived from this
}

type AIConfig struct {
	LLMProvider   string // "gemini" or "ollama"
	LLMModel      string
	OllamaBaseURL string
	GeminiBaseURL string
}

type DriveConfig struct {
	IndexStore string // "file" or "redis"
	CacheDir   string
	IndexTTL   time.Duration
	PageSize   int
	Workers    int // concurrent background crawls
}

type ConversationConfig struct {
	PendingTTL time.Duration
	HistoryTTL time.Duration
	MaxHistory int
}

type TimeoutConfig struct {
	LLM    time.Duration
	Google time.Duration
	Crawl  time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CrawlLogFilePath:   getEnv("CRAWL_LOG_FILE_PATH", "crawl.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			CrawlTopic:         getEnv("DRIVE_CRAWL_TOPIC_NAME", "DRIVE_INDEX_CRAWL"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/auth/google/callback"),
		},
		Keys: APIKeys{
			GoogleGemini:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
			TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
		},
		Drive: DriveConfig{
			IndexStore: getEnv("DRIVE_INDEX_STORE", "file"),
			CacheDir:   getEnv("DRIVE_CACHE_DIR", "drive_cache"),
			IndexTTL:   getEnvAsDuration("DRIVE_INDEX_TTL", 24*time.Hour),
			PageSize:   getEnvAsInt("DRIVE_PAGE_SIZE", 1000),
			Workers:    getEnvAsInt("DRIVE_CRAWL_WORKERS", 4),
		},
		Conversation: ConversationConfig{
			PendingTTL: getEnvAsDuration("CONVERSATION_PENDING_TTL", time.Hour),
			HistoryTTL: getEnvAsDuration("CONVERSATION_HISTORY_TTL", 24*time.Hour),
			MaxHistory: getEnvAsInt("CONVERSATION_MAX_HISTORY", 20),
		},
		Timeouts: TimeoutConfig{
			LLM:    getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			Google: getEnvAsDuration("GOOGLE_API_TIMEOUT", 30*time.Second),
			Crawl:  getEnvAsDuration("DRIVE_CRAWL_TIMEOUT", 15*time.Minute),
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

// getEnvAsDuration accepts Go durations ("90s", "24h") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
