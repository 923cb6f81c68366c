package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Billing  BillingConfig
	MockAI   MockAIConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables the NATS relay
	RedisURL           string // empty disables the sweep lock
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret      string
	AccessTokenTTL time.Duration
}

type BillingConfig struct {
	Authorizer        string // "random", "always" or "midtrans"
	FailureRate       float64
	RenewalInterval   time.Duration
	RenewalLockTTL    time.Duration
	MidtransServerKey string
	MidtransIsProd    bool
}

type MockAIConfig struct {
	Provider      string // "mock" or "ollama"
	MinDelay      time.Duration
	MaxDelay      time.Duration
	MinTokens     int
	MaxTokens     int
	OllamaBaseURL string
	OllamaModel   string
}

type CacheConfig struct {
	PublicBundlesTTL time.Duration
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
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "AI Chat"),
		},
		Auth: AuthConfig{
			JwtSecret:      getEnv("JWT_SECRET", "default_secret"),
			AccessTokenTTL: getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
		},
		Billing: BillingConfig{
			Authorizer:        getEnv("BILLING_AUTHORIZER", "random"),
			FailureRate:       getEnvAsFloat("BILLING_FAILURE_RATE", 0.1),
			RenewalInterval:   getEnvAsDuration("RENEWAL_INTERVAL", time.Hour),
			RenewalLockTTL:    getEnvAsDuration("RENEWAL_LOCK_TTL", 10*time.Minute),
			MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransIsProd:    getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
		},
		MockAI: MockAIConfig{
			Provider:      getEnv("LLM_PROVIDER", "mock"),
			MinDelay:      time.Duration(getEnvAsInt("MOCK_OPENAI_MIN_DELAY_MS", 200)) * time.Millisecond,
			MaxDelay:      time.Duration(getEnvAsInt("MOCK_OPENAI_MAX_DELAY_MS", 800)) * time.Millisecond,
			MinTokens:     getEnvAsInt("MOCK_OPENAI_MIN_TOKENS", 50),
			MaxTokens:     getEnvAsInt("MOCK_OPENAI_MAX_TOKENS", 500),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("LLM_MODEL", "llama3"),
		},
		Cache: CacheConfig{
			PublicBundlesTTL: getEnvAsDuration("PUBLIC_BUNDLES_CACHE_TTL", 30*time.Second),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings such as "90s" or "1h".
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
