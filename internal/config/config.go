package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// REST backend
	APIBaseURL string

	// Session persistence
	SessionDBPath string
	SessionSecret string

	// Memory backend demo account
	DemoEmail    string
	DemoPassword string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8000/api/v1"),

		SessionDBPath: getEnv("SESSION_DB_PATH", "./data/fintrack.db"),
		SessionSecret: getEnv("SESSION_SECRET", ""),

		DemoEmail:    getEnv("DEMO_EMAIL", "demo@fintrack.local"),
		DemoPassword: getEnv("DEMO_PASSWORD", "demo123"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "rest"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate API base URL if backend is rest
	if c.DataBackend == "rest" {
		if c.APIBaseURL == "" {
			errors = append(errors, "API base URL cannot be empty when using rest backend")
		} else if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	// Validate session storage path
	if c.SessionDBPath == "" {
		errors = append(errors, "session database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SessionDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create session database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate session secret
	if c.SessionSecret == "" {
		errors = append(errors, "session secret cannot be empty (set SESSION_SECRET)")
	} else if len(c.SessionSecret) < 16 {
		errors = append(errors, fmt.Sprintf("session secret too short (%d chars): must be at least 16", len(c.SessionSecret)))
	}

	// Validate demo account when the memory backend is selected
	if c.DataBackend == "memory" {
		if c.DemoEmail == "" {
			errors = append(errors, "demo email cannot be empty when using memory backend")
		}
		if len(c.DemoPassword) < 6 {
			errors = append(errors, "demo password must be at least 6 characters")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
