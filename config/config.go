package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	Logger    LoggerConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	PointerPath   string        `mapstructure:"pointer_path"` // empty means ~/.unitcost/last_session
	AutosaveDelay time.Duration `mapstructure:"autosave_delay"`
	RestoreLast   bool          `mapstructure:"restore_last"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // "json" or "console"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/unitcost/")

	// Environment variable settings
	v.SetEnvPrefix("UNITCOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Session defaults
	v.SetDefault("session.pointer_path", "")
	v.SetDefault("session.autosave_delay", "750ms")
	v.SetDefault("session.restore_last", true)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 600)
	v.SetDefault("ratelimit.burst", 60)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set UNITCOST_SERVER_PORT)")
	}

	if config.Session.AutosaveDelay <= 0 {
		return fmt.Errorf("session autosave delay must be positive, got: %s", config.Session.AutosaveDelay)
	}

	if config.Logger.Encoding != "json" && config.Logger.Encoding != "console" {
		return fmt.Errorf("logger encoding must be 'json' or 'console', got: %s", config.Logger.Encoding)
	}

	switch strings.ToLower(config.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logger level must be one of debug, info, warn, error, got: %s", config.Logger.Level)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP cannot be negative, got: %d", config.RateLimit.PerIP)
	}

	if config.RateLimit.PerIP > 0 && config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive when rate limiting is enabled")
	}

	return nil
}
