package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	MongoURI      string
	MongoDatabase string
	Port          string

	JWTSecret       string
	TokenTTLMinutes int

	CloudinaryURL string

	GeocoderBaseURL   string
	GeocoderUserAgent string

	// MaxPendingRequests caps how many pending join requests a single
	// user may hold across all events.
	MaxPendingRequests int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "joinup"),
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTLMinutes:    getEnvInt("TOKEN_TTL_MINUTES", 60),
		CloudinaryURL:      getEnv("CLOUDINARY_URL", ""),
		GeocoderBaseURL:    getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent:  getEnv("GEOCODER_USER_AGENT", "JoinUp-App"),
		MaxPendingRequests: getEnvInt("MAX_PENDING_REQUESTS", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
