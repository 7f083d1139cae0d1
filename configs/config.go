package configs

import (
	"net"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Admin    AdminConfig
	Database DatabaseConfig
	Prices   PriceFeedConfig
	Log      LogConfig
}

// ServerConfig holds wallet server configuration
type ServerConfig struct {
	Host           string
	Port           string
	ReadBufferSize int
}

// Addr returns the host:port the wallet server binds to
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// AdminConfig holds the ops HTTP configuration. An empty port disables it.
type AdminConfig struct {
	Port string
}

// Enabled reports whether the ops HTTP server should run
func (c AdminConfig) Enabled() bool {
	return c.Port != ""
}

// DatabaseConfig holds account store configuration.
// When URL is empty accounts are kept in UsersFile.
type DatabaseConfig struct {
	URL       string
	UsersFile string
}

// PriceFeedConfig holds price feed configuration
type PriceFeedConfig struct {
	APIKey      string
	URL         string
	RefreshSpec string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	File  string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnv("SERVER_PORT", "7777"),
			ReadBufferSize: getEnvInt("READ_BUFFER_SIZE", 16384),
		},
		Admin: AdminConfig{
			Port: getEnv("ADMIN_PORT", ""),
		},
		Database: DatabaseConfig{
			URL:       getEnv("DATABASE_URL", ""),
			UsersFile: getEnv("USERS_FILE", "database/users.json"),
		},
		Prices: PriceFeedConfig{
			APIKey:      getEnv("COINAPI_KEY", ""),
			URL:         getEnv("COINAPI_URL", "https://rest.coinapi.io/v1/assets/"),
			RefreshSpec: getEnv("PRICE_REFRESH_SPEC", "@every 30m"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets a positive integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
