package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigManager_Load(t *testing.T) {
	tests := []struct {
		name          string
		configFile    string
		envVars       map[string]string
		expectedError bool
		validate      func(*testing.T, *Config)
	}{
		{
			name: "Default config",
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, "8080", config.Server.Port)
				assert.Equal(t, "file", config.Snapshot.Source)
				assert.Equal(t, 10, config.List.DefaultPageSize)
				assert.Equal(t, 100, config.List.MaxPageSize)
				assert.Equal(t, []string{"pdf", "doc", "docx", "xls", "xlsx"}, config.List.FileTypes)
				assert.False(t, config.Events.Enabled)
			},
		},
		{
			name: "File config",
			configFile: `
server:
  port: "9090"
snapshot:
  source: http
  http:
    url: http://docs.internal/api/snapshot
list:
  default_page_size: 20
  file_types: [pdf, pptx]
`,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, "9090", config.Server.Port)
				assert.Equal(t, "http", config.Snapshot.Source)
				assert.Equal(t, "http://docs.internal/api/snapshot", config.Snapshot.HTTP.URL)
				assert.Equal(t, 10*time.Second, config.Snapshot.HTTP.Timeout)
				assert.Equal(t, 20, config.List.DefaultPageSize)
				assert.Equal(t, []string{"pdf", "pptx"}, config.List.FileTypes)
			},
		},
		{
			name:       "Environment overrides file",
			configFile: "server:\n  port: \"9090\"\n",
			envVars: map[string]string{
				"SERVER_PORT":                "8081",
				"LOG_LEVEL":                  "debug",
				"METRICS_ENABLED":            "false",
				"SNAPSHOT_CACHE_TTL":         "1m",
				"SNAPSHOT_HTTP_MAX_FAILURES": "7",
				"LIST_FILE_TYPES":            "pdf, zip",
			},
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, "8081", config.Server.Port)
				assert.Equal(t, "debug", config.Logging.Level)
				assert.False(t, config.Metrics.Enabled)
				assert.Equal(t, time.Minute, config.Snapshot.CacheTTL)
				assert.Equal(t, uint32(7), config.Snapshot.HTTP.MaxFailures)
				assert.Equal(t, []string{"pdf", "zip"}, config.List.FileTypes)
			},
		},
		{
			name:          "Invalid snapshot source",
			envVars:       map[string]string{"SNAPSHOT_SOURCE": "ftp"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cm := NewConfigManager(filepath.Join(dir, ".env"))

			path := ""
			if tt.configFile != "" {
				path = filepath.Join(dir, "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.configFile), 0644))
			}

			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			config, err := cm.Load(path)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.validate(t, config)
			assert.Same(t, config, cm.GetConfig())
		})
	}
}

func TestConfigManager_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LIST_MAX_PAGE_SIZE=50\nAPI_KEY=secret\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("LIST_MAX_PAGE_SIZE")
		os.Unsetenv("API_KEY")
	})

	config, err := NewConfigManager(envFile).Load("")
	require.NoError(t, err)

	assert.Equal(t, 50, config.List.MaxPageSize)
	assert.Equal(t, "secret", config.API.Key)
}

func TestConfigManager_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("list:\n  default_page_size: 10\n"), 0644))

	cm := NewConfigManager(filepath.Join(dir, ".env"))
	_, err := cm.Load(path)
	require.NoError(t, err)

	var notified *Config
	cm.Watch(func(c *Config) { notified = c })

	require.NoError(t, os.WriteFile(path, []byte("list:\n  default_page_size: 25\n"), 0644))
	require.NoError(t, cm.Reload())

	require.NotNil(t, notified)
	assert.Equal(t, 25, notified.List.DefaultPageSize)
	assert.Equal(t, 25, cm.GetConfig().List.DefaultPageSize)
}

func TestConfigManager_ReloadWithoutPath(t *testing.T) {
	assert.Error(t, NewConfigManager().Reload())
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{name: "Valid default", mutate: func(*Config) {}},
		{
			name:          "Missing server port",
			mutate:        func(c *Config) { c.Server.Port = "" },
			errorContains: "server port is required",
		},
		{
			name:          "HTTP source without URL",
			mutate:        func(c *Config) { c.Snapshot.Source = "http" },
			errorContains: "invalid snapshot URL",
		},
		{
			name:          "S3 source without bucket",
			mutate:        func(c *Config) { c.Snapshot.Source = "s3" },
			errorContains: "s3 bucket and key are required",
		},
		{
			name: "Max page size below default",
			mutate: func(c *Config) {
				c.List.DefaultPageSize = 20
				c.List.MaxPageSize = 10
			},
			errorContains: "max page size",
		},
		{
			name:          "Unknown database type",
			mutate:        func(c *Config) { c.Database.Type = "oracle" },
			errorContains: "unsupported database type",
		},
		{
			name: "Events enabled without brokers",
			mutate: func(c *Config) {
				c.Events.Enabled = true
				c.Events.Brokers = nil
			},
			errorContains: "at least one broker",
		},
		{
			name:          "File logging without path",
			mutate:        func(c *Config) { c.Logging.Output = "file" },
			errorContains: "log file path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewConfigManager().defaultConfig()
			tt.mutate(config)

			err := NewValidator().ValidateConfig(config)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	sqlite := DatabaseConfig{Type: "sqlite", Name: "./docdesk.db"}
	assert.Equal(t, "./docdesk.db", sqlite.DSN())

	pg := DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, Name: "docdesk", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/docdesk?sslmode=disable", pg.DSN())
}

func TestListConfig_Options(t *testing.T) {
	l := ListConfig{DefaultPageSize: 5, MaxPageSize: 50, FileTypes: []string{"pdf"}}
	opts := l.Options()

	assert.Equal(t, 5, opts.DefaultPageSize)
	assert.Equal(t, 50, opts.MaxPageSize)
	assert.Equal(t, []string{"pdf"}, opts.FileTypes)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultConfigPath, PathFromEnv())

	t.Setenv("CONFIG_PATH", "/etc/docdesk.yaml")
	assert.Equal(t, "/etc/docdesk.yaml", PathFromEnv())
}
