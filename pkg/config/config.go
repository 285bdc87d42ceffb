package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/zots0127/docdesk/pkg/listquery"
)

// DefaultConfigPath is used when CONFIG_PATH is unset
const DefaultConfigPath = "config.yaml"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	API      APIConfig      `yaml:"api" json:"api"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`
	List     ListConfig     `yaml:"list" json:"list"`
	Events   EventsConfig   `yaml:"events" json:"events"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host" env:"SERVER_HOST" default:"0.0.0.0"`
	Port            string        `yaml:"port" json:"port" env:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// APIConfig holds API configuration
type APIConfig struct {
	Key     string     `yaml:"key" json:"key" env:"API_KEY" sensitive:"true"`
	Version string     `yaml:"version" json:"version" env:"API_VERSION" default:"1.0.0"`
	CORS    CORSConfig `yaml:"cors" json:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" env:"CORS_ENABLED" default:"true"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" env:"CORS_ORIGINS" default:"[*]"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods" default:"[GET,POST,OPTIONS]"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers" default:"[Origin,Content-Type,Accept,X-API-Key,X-Request-ID]"`
	MaxAge         int      `yaml:"max_age" json:"max_age" env:"CORS_MAX_AGE" default:"86400"`
}

// DatabaseConfig holds the SQL connection used by the sql snapshot source
// and the viewed store
type DatabaseConfig struct {
	Type            string        `yaml:"type" json:"type" env:"DB_TYPE" default:"sqlite"` // sqlite, postgres
	Host            string        `yaml:"host" json:"host" env:"DB_HOST" default:"localhost"`
	Port            int           `yaml:"port" json:"port" env:"DB_PORT" default:"5432"`
	Name            string        `yaml:"name" json:"name" env:"DB_NAME" default:"./docdesk.db"`
	User            string        `yaml:"user" json:"user" env:"DB_USER"`
	Password        string        `yaml:"password" json:"password" env:"DB_PASSWORD" sensitive:"true"`
	SSLMode         string        `yaml:"ssl_mode" json:"ssl_mode" env:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// DSN returns the driver connection string for the configured database type
func (d DatabaseConfig) DSN() string {
	if d.Type == "postgres" {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
	}
	return d.Name
}

// SnapshotConfig selects and configures the snapshot source
type SnapshotConfig struct {
	Source   string            `yaml:"source" json:"source" env:"SNAPSHOT_SOURCE" default:"file"` // file, http, sql, mongo, s3
	CacheTTL time.Duration     `yaml:"cache_ttl" json:"cache_ttl" env:"SNAPSHOT_CACHE_TTL" default:"30s"`
	File     FileSourceConfig  `yaml:"file" json:"file"`
	HTTP     HTTPSourceConfig  `yaml:"http" json:"http"`
	S3       S3SourceConfig    `yaml:"s3" json:"s3"`
	Mongo    MongoSourceConfig `yaml:"mongo" json:"mongo"`
}

// FileSourceConfig configures the JSON file snapshot source
type FileSourceConfig struct {
	Path     string        `yaml:"path" json:"path" env:"SNAPSHOT_FILE" default:"./snapshot.json"`
	Watch    bool          `yaml:"watch" json:"watch" env:"SNAPSHOT_FILE_WATCH" default:"true"`
	Debounce time.Duration `yaml:"debounce" json:"debounce" env:"SNAPSHOT_FILE_DEBOUNCE" default:"500ms"`
}

// HTTPSourceConfig configures the document API snapshot source
type HTTPSourceConfig struct {
	URL         string        `yaml:"url" json:"url" env:"SNAPSHOT_HTTP_URL"`
	APIKey      string        `yaml:"api_key" json:"api_key" env:"SNAPSHOT_HTTP_API_KEY" sensitive:"true"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" env:"SNAPSHOT_HTTP_TIMEOUT" default:"10s"`
	MaxFailures uint32        `yaml:"max_failures" json:"max_failures" env:"SNAPSHOT_HTTP_MAX_FAILURES" default:"3"`
	OpenTimeout time.Duration `yaml:"open_timeout" json:"open_timeout" env:"SNAPSHOT_HTTP_OPEN_TIMEOUT" default:"30s"`
}

// S3SourceConfig configures the object storage snapshot source
type S3SourceConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint" env:"SNAPSHOT_S3_ENDPOINT"`
	Region    string `yaml:"region" json:"region" env:"SNAPSHOT_S3_REGION" default:"us-east-1"`
	Bucket    string `yaml:"bucket" json:"bucket" env:"SNAPSHOT_S3_BUCKET"`
	Key       string `yaml:"key" json:"key" env:"SNAPSHOT_S3_KEY" default:"snapshot.json"`
	AccessKey string `yaml:"access_key" json:"access_key" env:"SNAPSHOT_S3_ACCESS_KEY" sensitive:"true"`
	SecretKey string `yaml:"secret_key" json:"secret_key" env:"SNAPSHOT_S3_SECRET_KEY" sensitive:"true"`
}

// MongoSourceConfig configures the MongoDB snapshot source
type MongoSourceConfig struct {
	URI      string `yaml:"uri" json:"uri" env:"SNAPSHOT_MONGO_URI" default:"mongodb://localhost:27017"`
	Database string `yaml:"database" json:"database" env:"SNAPSHOT_MONGO_DATABASE" default:"docdesk"`
}

// ListConfig holds list pipeline defaults
type ListConfig struct {
	DefaultPageSize int      `yaml:"default_page_size" json:"default_page_size" env:"LIST_DEFAULT_PAGE_SIZE" default:"10"`
	MaxPageSize     int      `yaml:"max_page_size" json:"max_page_size" env:"LIST_MAX_PAGE_SIZE" default:"100"`
	FileTypes       []string `yaml:"file_types" json:"file_types" env:"LIST_FILE_TYPES" default:"[pdf,doc,docx,xls,xlsx]"`
	ViewedStore     string   `yaml:"viewed_store" json:"viewed_store" env:"LIST_VIEWED_STORE" default:"database"` // memory, database
}

// Options converts the list section into pipeline options
func (l ListConfig) Options() listquery.Options {
	return listquery.Options{
		DefaultPageSize: l.DefaultPageSize,
		MaxPageSize:     l.MaxPageSize,
		FileTypes:       append([]string(nil), l.FileTypes...),
	}
}

// EventsConfig configures the project change event consumer
type EventsConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled" env:"EVENTS_ENABLED" default:"false"`
	Brokers []string `yaml:"brokers" json:"brokers" env:"EVENTS_BROKERS" default:"[localhost:9092]"`
	Topic   string   `yaml:"topic" json:"topic" env:"EVENTS_TOPIC" default:"project.changed"`
	GroupID string   `yaml:"group_id" json:"group_id" env:"EVENTS_GROUP_ID" default:"docdesk"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level" env:"LOG_LEVEL" default:"info"`
	Format     string `yaml:"format" json:"format" env:"LOG_FORMAT" default:"json"`   // json, text
	Output     string `yaml:"output" json:"output" env:"LOG_OUTPUT" default:"stdout"` // stdout, stderr, file
	File       string `yaml:"file" json:"file" env:"LOG_FILE"`
	MaxSize    int    `yaml:"max_size" json:"max_size" env:"LOG_MAX_SIZE" default:"100"` // MB
	MaxBackups int    `yaml:"max_backups" json:"max_backups" env:"LOG_MAX_BACKUPS" default:"3"`
	MaxAge     int    `yaml:"max_age" json:"max_age" env:"LOG_MAX_AGE" default:"28"` // days
	Compress   bool   `yaml:"compress" json:"compress" env:"LOG_COMPRESS" default:"true"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" env:"METRICS_ENABLED" default:"true"`
	Path    string `yaml:"path" json:"path" env:"METRICS_PATH" default:"/metrics"`
}

// ConfigManager manages configuration loading and validation
type ConfigManager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	envFiles   []string
	watchers   []func(*Config)
	logger     logrus.FieldLogger
}

// NewConfigManager creates a new configuration manager.
// envFiles are loaded with godotenv before environment overrides; missing files are ignored.
func NewConfigManager(envFiles ...string) *ConfigManager {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &ConfigManager{
		envFiles: envFiles,
		watchers: make([]func(*Config), 0),
		logger:   logrus.StandardLogger(),
	}
}

// SetLogger replaces the logger used for the configuration summary
func (cm *ConfigManager) SetLogger(logger logrus.FieldLogger) {
	cm.logger = logger
}

// PathFromEnv returns CONFIG_PATH or the default config path
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load loads configuration from file and environment variables
func (cm *ConfigManager) Load(configPath string) (*Config, error) {
	config := cm.defaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cm.loadFromFile(config, configPath); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := cm.loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	if err := cm.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := NewValidator().ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cm.mu.Lock()
	cm.configPath = configPath
	cm.config = config
	cm.mu.Unlock()

	cm.logConfigSummary(config)

	return config, nil
}

// Reload reloads the configuration and notifies watchers
func (cm *ConfigManager) Reload() error {
	cm.mu.RLock()
	path := cm.configPath
	cm.mu.RUnlock()

	if path == "" {
		return fmt.Errorf("no config path set")
	}

	config, err := cm.Load(path)
	if err != nil {
		return err
	}

	cm.mu.RLock()
	watchers := append([]func(*Config){}, cm.watchers...)
	cm.mu.RUnlock()

	for _, watcher := range watchers {
		watcher(config)
	}

	return nil
}

// Watch adds a configuration change watcher
func (cm *ConfigManager) Watch(watcher func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.watchers = append(cm.watchers, watcher)
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// Path returns the path the configuration was loaded from
func (cm *ConfigManager) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// loadFromFile loads configuration from a YAML file
func (cm *ConfigManager) loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadEnvFiles loads .env files without overriding variables already set
func (cm *ConfigManager) loadEnvFiles() error {
	for _, f := range cm.envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func (cm *ConfigManager) loadFromEnv(config *Config) error {
	return cm.setEnvVars(reflect.ValueOf(config).Elem())
}

// setEnvVars recursively sets environment variables on struct fields
func (cm *ConfigManager) setEnvVars(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			if field.Kind() == reflect.Struct {
				if err := cm.setEnvVars(field); err != nil {
					return err
				}
			}
			continue
		}

		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := cm.setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// setFieldValue sets a field value from an environment variable string
func (cm *ConfigManager) setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(duration))
		} else {
			var intValue int64
			if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
				return err
			}
			field.SetInt(intValue)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var uintValue uint64
		if _, err := fmt.Sscanf(value, "%d", &uintValue); err != nil {
			return err
		}
		field.SetUint(uintValue)
	case reflect.Bool:
		boolValue := value == "true" || value == "1" || value == "yes" || value == "on"
		field.SetBool(boolValue)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			values := strings.Split(value, ",")
			for i, v := range values {
				values[i] = strings.TrimSpace(v)
			}
			field.Set(reflect.ValueOf(values))
		}
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// defaultConfig returns the default configuration
func (cm *ConfigManager) defaultConfig() *Config {
	opts := listquery.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			Version: "1.0.0",
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "X-API-Key", "X-Request-ID"},
				MaxAge:         86400,
			},
		},
		Database: DatabaseConfig{
			Type:            "sqlite",
			Host:            "localhost",
			Port:            5432,
			Name:            "./docdesk.db",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Snapshot: SnapshotConfig{
			Source:   "file",
			CacheTTL: 30 * time.Second,
			File: FileSourceConfig{
				Path:     "./snapshot.json",
				Watch:    true,
				Debounce: 500 * time.Millisecond,
			},
			HTTP: HTTPSourceConfig{
				Timeout:     10 * time.Second,
				MaxFailures: 3,
				OpenTimeout: 30 * time.Second,
			},
			S3: S3SourceConfig{
				Region: "us-east-1",
				Key:    "snapshot.json",
			},
			Mongo: MongoSourceConfig{
				URI:      "mongodb://localhost:27017",
				Database: "docdesk",
			},
		},
		List: ListConfig{
			DefaultPageSize: opts.DefaultPageSize,
			MaxPageSize:     opts.MaxPageSize,
			FileTypes:       opts.FileTypes,
			ViewedStore:     "database",
		},
		Events: EventsConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "project.changed",
			GroupID: "docdesk",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// logConfigSummary logs a summary of the configuration without sensitive data
func (cm *ConfigManager) logConfigSummary(config *Config) {
	if config.API.Key != "" {
		hash := sha256.Sum256([]byte(config.API.Key))
		cm.logger.Infof("API key configured (hash: %s...)", hex.EncodeToString(hash[:8]))
	}

	cm.logger.WithFields(logrus.Fields{
		"server":          config.Server.Host + ":" + config.Server.Port,
		"database":        config.Database.Type,
		"snapshot_source": config.Snapshot.Source,
		"viewed_store":    config.List.ViewedStore,
		"events":          config.Events.Enabled,
		"metrics":         config.Metrics.Enabled,
	}).Info("Configuration loaded")
}
