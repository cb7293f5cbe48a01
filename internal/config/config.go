package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSessionSecret = "property-portal-secret-key-change-in-production"
)

// Config holds everything the server needs at startup
type Config struct {
	ServerPort     string
	DBDriver       string
	DBPath         string // used by the sqlite driver
	DatabaseURL    string // used by the postgres driver
	UploadsDir     string
	SessionSecret  string
	AdminUsername  string
	AdminPassword  string
	SecureCookies  bool
	SeedProperties bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "3000"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:         getEnv("DB_PATH", "data/properties.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		SecureCookies:  os.Getenv("SECURE_COOKIES") == "true",
		SeedProperties: getEnv("SEED_PROPERTIES", "true") != "false",
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set when DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use %s or %s)", cfg.DBDriver, DriverSQLite, DriverPostgres)
	}

	if cfg.SessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET not set, using default secret")
		cfg.SessionSecret = defaultSessionSecret
	}
	if cfg.AdminPassword == "" {
		log.Println("WARNING: ADMIN_PASSWORD not set, using default password")
		cfg.AdminPassword = "admin123"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
