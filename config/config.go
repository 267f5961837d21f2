package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	// Remote API
	APIBaseURL     string
	HTTPTimeout    time.Duration
	RequestsPerSec float64
	RequestBurst   int
	// Local state
	StateFilePath string
	CartStashTTL  time.Duration
	// Business Rules
	MaxCartQuantity int
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: Try loading .env (standard local dev)
		// We don't error here because in pure docker/prod envs, .env might not exist,
		// and we rely on system env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
		HTTPTimeout:    getDurationEnv("HTTP_TIMEOUT", 15*time.Second),
		RequestsPerSec: getFloatEnv("REQUESTS_PER_SEC", 5),
		RequestBurst:   getIntEnv("REQUEST_BURST", 10),

		StateFilePath: getEnv("STATE_FILE_PATH", defaultStatePath()),
		// Cart survives a browsing session; stash entries expire after this.
		CartStashTTL: getDurationEnv("CART_STASH_TTL", 12*time.Hour),

		// Business rules: 0 means no per-item cap
		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 0),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.APIBaseURL == "" {
		log.Fatal("CRITICAL: API_BASE_URL environment variable is required")
	}
	if c.RequestsPerSec <= 0 {
		log.Fatal("CRITICAL: REQUESTS_PER_SEC must be positive")
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "eatsy-session.json"
	}
	return dir + string(os.PathSeparator) + "eatsy" + string(os.PathSeparator) + "session.json"
}
