package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	baseURLVar     = "BASE_URL"
	environmentVar = "ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Booking Links")
}

// GetBaseURL returns the public base URL of the backend (e.g., "https://booking.example.com").
// Generated form links and the session token issuer are derived from it.
func (EnvVars) GetBaseURL() string {
	return strings.TrimSuffix(GetEnv(baseURLVar, "http://localhost:8080"), "/")
}

func (EnvVars) GetEnv() string {
	return GetEnv(environmentVar, "DEV")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration parses a Go duration string, falling back to defaultValue when unset or invalid.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return d
}

func GetEnvInt(envVar string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return n
}
