package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	LogLevel string
}

type ServerConfig struct {
	Port          string
	RatePerSecond float64
	RateBurst     int
	TrustProxy    bool
}

type BackendConfig struct {
	BaseURL     string
	CreatePath  string
	ListingPath string
	Timeout     time.Duration
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepSchedule string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			RatePerSecond: parseFloat(os.Getenv("RATE_LIMIT_PER_SECOND"), 5),
			RateBurst:     parseInt(os.Getenv("RATE_LIMIT_BURST"), 10),
			TrustProxy:    parseBool(os.Getenv("TRUSTED_PROXY"), false),
		},
		Backend: BackendConfig{
			BaseURL:     getEnv("API_BASE_URL", "http://localhost:8081"),
			CreatePath:  getEnv("CREATE_PATH", "/restaurant_api/api/reservations/add"),
			ListingPath: getEnv("LISTING_PATH", "/reservations"),
			Timeout:     time.Duration(parseInt(os.Getenv("HTTP_TIMEOUT_SECONDS"), 10)) * time.Second,
		},
		Session: SessionConfig{
			IdleTTL:       time.Duration(parseInt(os.Getenv("SESSION_IDLE_MINUTES"), 30)) * time.Minute,
			SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 1m"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// parseInt returns defaultValue when s is empty, malformed or not positive.
func parseInt(s string, defaultValue int) int {
	val, err := strconv.Atoi(s)
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}

func parseBool(s string, defaultValue bool) bool {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return val
}

func parseFloat(s string, defaultValue float64) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}
