package config

import (
	"log"
	"os"
	"time"
)

const (
	defaultEnv            = "development"
	defaultDBPath         = "./dev.db"
	defaultPort           = "8080"
	defaultSessionTTL     = 24 * time.Hour
	defaultLoginRateLimit = "10-M"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string
	AdminEmail     string
	AdminPassword  string
	SessionSecret  string
	SessionTTL     time.Duration
	DBPath         string
	Port           string
	LoginRateLimit string
	SeedFile       string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Production should use real env injection; a missing file is not an error.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: load .env: %v", err)
	}

	cfg := Config{
		Env:            getEnv("APP_ENV", defaultEnv),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     getDuration("SESSION_TTL", defaultSessionTTL),
		DBPath:         getEnv("DB_PATH", defaultDBPath),
		Port:           getEnv("PORT", defaultPort),
		LoginRateLimit: getEnv("LOGIN_RATE_LIMIT", defaultLoginRateLimit),
		SeedFile:       os.Getenv("SEED_FILE"),
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("warning: %s=%q is not a positive duration, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
