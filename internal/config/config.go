package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	DatabaseURL       string
	ConversationStore string // "postgres" (default) or "redis"
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool

	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	ResolverTimeout time.Duration

	GoogleCredentialsJSON string
	GoogleTokenJSON       string
	CalendarID            string
	CalendarTimezone      string
	CalendarTimeout       time.Duration

	OpenRouteAPIKey  string
	OpenRouteBaseURL string

	HistoryLimit  int
	ContextWindow int

	// Additional confirmation/negation patterns, comma separated regexes,
	// appended to the built-in English and Bengali defaults.
	ExtraAffirmationPatterns []string
	ExtraNegationPatterns    []string

	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ConversationStore: strings.ToLower(strings.TrimSpace(getEnv("CONVERSATION_STORE", "postgres"))),
		RedisAddr:         getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ResolverTimeout: getEnvAsDuration("RESOLVER_TIMEOUT", 25*time.Second),

		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		GoogleTokenJSON:       getEnv("GOOGLE_TOKEN_JSON", ""),
		CalendarID:            getEnv("CALENDAR_ID", "primary"),
		CalendarTimezone:      getEnv("CALENDAR_TIMEZONE", "Asia/Dhaka"),
		CalendarTimeout:       getEnvAsDuration("CALENDAR_TIMEOUT", 20*time.Second),

		OpenRouteAPIKey:  getEnv("OPENROUTE_API_KEY", ""),
		OpenRouteBaseURL: getEnv("OPENROUTE_BASE_URL", "https://api.openrouteservice.org"),

		HistoryLimit:  getEnvAsInt("HISTORY_LIMIT", 30),
		ContextWindow: getEnvAsInt("CONTEXT_WINDOW", 10),

		ExtraAffirmationPatterns: getEnvAsList("EXTRA_AFFIRMATION_PATTERNS"),
		ExtraNegationPatterns:    getEnvAsList("EXTRA_NEGATION_PATTERNS"),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
