// Package config reads the settings of the service from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Supported values of STORE.
const (
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var (
	ErrMissingPort  = errors.New("environment variable PORT not set")
	ErrInvalidPort  = errors.New("environment variable PORT is not a number")
	ErrInvalidStore = errors.New("environment variable STORE must be mysql, postgres or memory")
)

type Config struct {
	Port        string
	Store       string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	PostgresDSN string
	LogMode     string
	GinLogging  bool
	Seed        bool
	CORSOrigins []string
}

// Load reads the configuration. PORT is required; everything else has a default.
func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return nil, ErrMissingPort
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPort, port)
	}

	cfg := &Config{
		Port:        port,
		Store:       strings.ToLower(GetEnv("STORE", StoreMySQL)),
		DBHost:      GetEnv("DBHOST", "localhost"),
		DBUser:      os.Getenv("DBUSER"),
		DBPassword:  os.Getenv("DBPWD"),
		DBName:      GetEnv("DBNAME", "test"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		LogMode:     GetEnv("LOG_MODE", "dev"),
		GinLogging:  os.Getenv("GIN_LOGGING") != "off",
		Seed:        getEnvBool("SEED", false),
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
	}
	switch cfg.Store {
	case StoreMySQL, StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStore, cfg.Store)
	}
	return cfg, nil
}

// GetEnv returns the value of the environment variable named by key, or defaultValue if it is unset
// or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
