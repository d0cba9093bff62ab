package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogLevel string
	LogJSON  bool

	// Redis (optional cache; empty disables caching)
	RedisURL string

	// Gemini vision / transcription
	GeminiAPIKey string
	GeminiModel  string

	// OpenAI-compatible chat + speech provider
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	ClassifierModel string
	SpeechModel     string
	SpeechVoice     string

	// Perplexity-compatible chat provider (GLP-1 persona)
	PerplexityAPIKey  string
	PerplexityBaseURL string
	PerplexityModel   string

	// openFDA drug label API
	OpenFDABaseURL string
	DrugCacheTTL   time.Duration

	// Nominal maximum duration for a whole request, streams included
	MaxRequestDuration time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogJSON:  getEnvOrDefault("LOG_FORMAT", "text") == "json",

		RedisURL: getEnvOrDefault("REDIS_URL", ""),

		// Provider credentials are optional at startup: a missing key is
		// reported as a 500 when the endpoint that needs it is first hit.
		GeminiAPIKey: getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),

		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:     getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ClassifierModel: getEnvOrDefault("CLASSIFIER_MODEL", "gpt-4o-mini"),
		SpeechModel:     getEnvOrDefault("SPEECH_MODEL", "tts-1"),
		SpeechVoice:     getEnvOrDefault("SPEECH_VOICE", "alloy"),

		PerplexityAPIKey:  getEnvOrDefault("PERPLEXITY_API_KEY", ""),
		PerplexityBaseURL: getEnvOrDefault("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		PerplexityModel:   getEnvOrDefault("PERPLEXITY_MODEL", "sonar-reasoning"),

		OpenFDABaseURL: getEnvOrDefault("OPENFDA_BASE_URL", "https://api.fda.gov"),
		DrugCacheTTL:   time.Duration(getEnvAsIntOrDefault("DRUG_CACHE_TTL_SECONDS", 3600)) * time.Second,

		MaxRequestDuration: time.Duration(getEnvAsIntOrDefault("MAX_REQUEST_DURATION_SECONDS", 300)) * time.Second,
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
