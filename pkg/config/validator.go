package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Validator provides configuration validation functions
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfig performs comprehensive configuration validation
func (v *Validator) ValidateConfig(config *Config) error {
	if err := v.validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateDatabaseConfig(&config.Database); err != nil {
		return fmt.Errorf("database config validation failed: %w", err)
	}

	if err := v.validateSnapshotConfig(&config.Snapshot); err != nil {
		return fmt.Errorf("snapshot config validation failed: %w", err)
	}

	if err := v.validateListConfig(&config.List); err != nil {
		return fmt.Errorf("list config validation failed: %w", err)
	}

	if err := v.validateEventsConfig(&config.Events); err != nil {
		return fmt.Errorf("events config validation failed: %w", err)
	}

	if err := v.validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration
func (v *Validator) validateServerConfig(config *ServerConfig) error {
	if config.Port == "" {
		return fmt.Errorf("server port is required")
	}

	port, err := strconv.Atoi(config.Port)
	if err != nil {
		return fmt.Errorf("invalid server port: %s", config.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if config.ReadTimeout <= 0 || config.WriteTimeout <= 0 {
		return fmt.Errorf("read and write timeouts must be positive")
	}

	return nil
}

// validateDatabaseConfig validates database configuration
func (v *Validator) validateDatabaseConfig(config *DatabaseConfig) error {
	switch config.Type {
	case "sqlite":
		if config.Name == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	case "postgres":
		if config.Host == "" || config.Name == "" {
			return fmt.Errorf("postgres host and database name are required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", config.Type)
	}

	if config.MaxOpenConns < 0 || config.MaxIdleConns < 0 {
		return fmt.Errorf("connection pool sizes cannot be negative")
	}

	return nil
}

// validateSnapshotConfig validates the selected snapshot source
func (v *Validator) validateSnapshotConfig(config *SnapshotConfig) error {
	switch config.Source {
	case "file":
		if config.File.Path == "" {
			return fmt.Errorf("snapshot file path is required")
		}
	case "http":
		if !v.isValidURL(config.HTTP.URL) {
			return fmt.Errorf("invalid snapshot URL: %q", config.HTTP.URL)
		}
		if config.HTTP.Timeout <= 0 {
			return fmt.Errorf("snapshot HTTP timeout must be positive")
		}
	case "sql":
	case "mongo":
		if config.Mongo.URI == "" || config.Mongo.Database == "" {
			return fmt.Errorf("mongo uri and database are required")
		}
	case "s3":
		if config.S3.Bucket == "" || config.S3.Key == "" {
			return fmt.Errorf("s3 bucket and key are required")
		}
	default:
		return fmt.Errorf("unsupported snapshot source: %s", config.Source)
	}

	if config.CacheTTL < 0 {
		return fmt.Errorf("snapshot cache ttl cannot be negative")
	}

	return nil
}

// validateListConfig validates list pipeline defaults
func (v *Validator) validateListConfig(config *ListConfig) error {
	if config.DefaultPageSize < 1 {
		return fmt.Errorf("default page size must be at least 1")
	}
	if config.MaxPageSize < config.DefaultPageSize {
		return fmt.Errorf("max page size %d is below default page size %d", config.MaxPageSize, config.DefaultPageSize)
	}
	for _, ft := range config.FileTypes {
		if strings.TrimSpace(ft) == "" {
			return fmt.Errorf("file types cannot contain empty entries")
		}
	}
	if config.ViewedStore != "memory" && config.ViewedStore != "database" {
		return fmt.Errorf("unsupported viewed store: %s", config.ViewedStore)
	}
	return nil
}

// validateEventsConfig validates the event consumer settings
func (v *Validator) validateEventsConfig(config *EventsConfig) error {
	if !config.Enabled {
		return nil
	}
	if len(config.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required when events are enabled")
	}
	if config.Topic == "" {
		return fmt.Errorf("events topic is required")
	}
	return nil
}

// validateLoggingConfig validates logging configuration
func (v *Validator) validateLoggingConfig(config *LoggingConfig) error {
	switch strings.ToLower(config.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("invalid log level: %s", config.Level)
	}

	if config.Format != "json" && config.Format != "text" {
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	switch config.Output {
	case "stdout", "stderr":
	case "file":
		if config.File == "" {
			return fmt.Errorf("log file path is required when output is file")
		}
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	return nil
}

func (v *Validator) isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
