package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventTopic         string
}

type DatabaseConfig struct {
	Connection   string
	SearchConfig string // Postgres text search configuration, e.g. "english"
	LookupLimit  int
}

type AIConfig struct {
	LLMProvider    string // "ollama", "openai", "huggingface", "gemini"
	LLMModel       string
	OllamaBaseURL  string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	HuggingFaceKey string
	GeminiAPIKey   string
}

type PipelineConfig struct {
	MaxCycles        int
	RequestTimeout   time.Duration
	ReasoningTimeout time.Duration
	StoreTimeout     time.Duration
}

type CacheConfig struct {
	Enabled bool
	L1TTL   time.Duration
	L2TTL   time.Duration
}

type IngestConfig struct {
	FMPAPIKey         string
	FMPBaseURL        string
	CacheDir          string
	RequestsPerSecond float64
	BatchSize         int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			EventTopic:         getEnv("EVENT_TOPIC", "TICKER_RESOLVED"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			SearchConfig: getEnv("DB_SEARCH_CONFIG", "english"),
			LookupLimit:  getEnvAsInt("DB_LOOKUP_LIMIT", 50),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
			LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
			HuggingFaceKey: getEnv("HUGGINGFACE_API_KEY", ""),
			GeminiAPIKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			MaxCycles:        getEnvAsInt("PIPELINE_MAX_CYCLES", 3),
			RequestTimeout:   getEnvAsDuration("PIPELINE_REQUEST_TIMEOUT", 45*time.Second),
			ReasoningTimeout: getEnvAsDuration("PIPELINE_REASONING_TIMEOUT", 20*time.Second),
			StoreTimeout:     getEnvAsDuration("PIPELINE_STORE_TIMEOUT", 5*time.Second),
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("CATALOG_CACHE_ENABLED", true),
			L1TTL:   getEnvAsDuration("CATALOG_CACHE_L1_TTL", 10*time.Minute),
			L2TTL:   getEnvAsDuration("CATALOG_CACHE_L2_TTL", time.Hour),
		},
		Ingest: IngestConfig{
			FMPAPIKey:         getEnv("FMP_API_KEY", ""),
			FMPBaseURL:        getEnv("FMP_BASE_URL", "https://financialmodelingprep.com"),
			CacheDir:          getEnv("INGEST_CACHE_DIR", "data/cache"),
			RequestsPerSecond: getEnvAsFloat("INGEST_REQUESTS_PER_SECOND", 5),
			BatchSize:         getEnvAsInt("INGEST_BATCH_SIZE", 1000),
		},
	}
}

// Validate checks the pipeline bounds. The resolution loop must never run unbounded.
func (p PipelineConfig) Validate() error {
	if p.MaxCycles < 1 {
		return fmt.Errorf("PIPELINE_MAX_CYCLES must be at least 1, got %d", p.MaxCycles)
	}
	if p.RequestTimeout <= 0 || p.ReasoningTimeout <= 0 || p.StoreTimeout <= 0 {
		return fmt.Errorf("pipeline timeouts must be positive")
	}
	return nil
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
