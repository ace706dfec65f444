package config

import (
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client.
type Config struct {
	APIBaseURL  string
	SocketURL   string
	LocalDBPath string
	MetricsAddr string
	Environment string
}

// Load loads configuration from environment variables.
// It attempts to load from .env file if not in production.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file if not in production. We don't return an error here
	// because in production .env might not exist and we rely on system
	// environment variables.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment: env,
		APIBaseURL:  os.Getenv("API_BASE_URL"),
		SocketURL:   os.Getenv("SOCKET_URL"),
		LocalDBPath: os.Getenv("LOCAL_DB_PATH"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:5000/api"
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	// The push service lives on the API host without the /api path prefix.
	if cfg.SocketURL == "" {
		cfg.SocketURL = deriveSocketURL(cfg.APIBaseURL)
	}
	cfg.SocketURL = strings.TrimRight(cfg.SocketURL, "/")

	if cfg.LocalDBPath == "" {
		cfg.LocalDBPath = "unalone.db"
	}

	return cfg, nil
}

// deriveSocketURL strips a trailing /api segment from the API base URL.
func deriveSocketURL(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil {
		return apiURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 && parts[len(parts)-1] == "api" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		u.Path = ""
	} else {
		u.Path = "/" + strings.Join(parts, "/")
	}
	return strings.TrimRight(u.String(), "/")
}
