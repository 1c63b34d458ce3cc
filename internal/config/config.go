package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseURL    string
	UseMemoryQueue bool
	WorkerCount    int

	// Moderation: default for the auto-approve toggle when the settings
	// store has no value.
	AutoApproveDefault bool

	// Sentinel coordinate written when geocoding misses. Defaults to the
	// Mumbai city centroid so radius filtering stays sane.
	DefaultCentroidLat float64
	DefaultCentroidLng float64

	// Attribution identity for system-originated leads (webhooks, bot).
	SystemUserID string

	// Extraction
	ExtractorProvider string // "gemini" or "bedrock"
	GeminiAPIKey      string
	GeminiModelID     string
	BedrockModelID    string

	// Geocoding
	GeocoderBaseURL         string
	GeocoderAPIKey          string
	GeocoderCountry         string
	FallbackGeocoderBaseURL string
	GeocoderRateLimit       float64

	// Channel auth
	MetaVerifyToken string
	MetaAppSecret   string
	MSG91AuthKey    string
	GroupBotToken   string

	// Admin API
	AdminJWTSecret string

	// Notification fan-out
	NotifyQueueURL string
	NotifyRadiusKm float64

	// Review alerts for low-confidence extractions.
	ModeratorEmails     string
	EmailProvider       string // "sendgrid", "ses" or ""
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	SESFromEmail        string
	ReviewThreshold     int
	GroupBotCacheSize   int
	ExtractorMaxRetries int

	// AWS (SQS, SES, Bedrock)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Settings store
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		AutoApproveDefault: getEnvAsBool("AUTO_APPROVE_DEFAULT", false),

		DefaultCentroidLat: getEnvAsFloat("DEFAULT_CENTROID_LAT", 19.0760),
		DefaultCentroidLng: getEnvAsFloat("DEFAULT_CENTROID_LNG", 72.8777),

		SystemUserID: getEnv("SYSTEM_USER_ID", "system"),

		ExtractorProvider: strings.ToLower(strings.TrimSpace(getEnv("EXTRACTOR_PROVIDER", "gemini"))),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", ""),

		GeocoderBaseURL:         getEnv("GEOCODER_BASE_URL", "https://api.mapbox.com/geocoding/v5/mapbox.places"),
		GeocoderAPIKey:          getEnv("GEOCODER_API_KEY", ""),
		GeocoderCountry:         getEnv("GEOCODER_COUNTRY", "in"),
		FallbackGeocoderBaseURL: getEnv("FALLBACK_GEOCODER_BASE_URL", "https://photon.komoot.io/api"),
		GeocoderRateLimit:       getEnvAsFloat("GEOCODER_RATE_LIMIT", 10),

		MetaVerifyToken: getEnv("META_VERIFY_TOKEN", ""),
		MetaAppSecret:   getEnv("META_APP_SECRET", ""),
		MSG91AuthKey:    getEnv("MSG91_AUTHKEY", ""),
		GroupBotToken:   getEnv("GROUPBOT_TOKEN", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		NotifyQueueURL: getEnv("NOTIFY_QUEUE_URL", ""),
		NotifyRadiusKm: getEnvAsFloat("NOTIFY_RADIUS_KM", 10),

		ModeratorEmails:     getEnv("MODERATOR_EMAILS", ""),
		EmailProvider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "SevaGully"),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		ReviewThreshold:     getEnvAsInt("REVIEW_THRESHOLD", 70),
		GroupBotCacheSize:   getEnvAsInt("GROUPBOT_CACHE_SIZE", 512),
		ExtractorMaxRetries: getEnvAsInt("EXTRACTOR_MAX_RETRIES", 1),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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
