package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCleanManager(t *testing.T) *Manager {
	t.Helper()
	viper.Reset()
	clearEnvVars(t)

	m, err := NewManager()
	require.NoError(t, err)
	return m
}

func TestNewManager_Defaults(t *testing.T) {
	m := newCleanManager(t)
	cfg := m.GetConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)

	assert.Equal(t, "data/biomarkers_database.json", cfg.Catalog.Path)
	assert.Equal(t, "sqlite", cfg.History.Driver)
	assert.Equal(t, "data/score_history.db", cfg.History.SQLitePath)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Database.AutoMigrate)

	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)

	assert.Equal(t, 20.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.RateLimit.Burst)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.NoError(t, m.Validate())
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	clearEnvVars(t)

	os.Setenv("LONGEVITY_SERVER_PORT", "9090")
	os.Setenv("LONGEVITY_HISTORY_DRIVER", "none")
	os.Setenv("LONGEVITY_LOGGING_LEVEL", "debug")
	defer clearEnvVars(t)

	m, err := NewManager()
	require.NoError(t, err)
	cfg := m.GetConfig()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "none", cfg.History.Driver)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, m.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Manager)
	}{
		{"invalid port", func(m *Manager) { m.config.Server.Port = 0 }},
		{"port too large", func(m *Manager) { m.config.Server.Port = 70000 }},
		{"missing catalog path", func(m *Manager) { m.config.Catalog.Path = "" }},
		{"unknown history driver", func(m *Manager) { m.config.History.Driver = "mysql" }},
		{"sqlite driver without path", func(m *Manager) {
			m.config.History.Driver = "sqlite"
			m.config.History.SQLitePath = ""
		}},
		{"postgres driver without host", func(m *Manager) {
			m.config.History.Driver = "postgres"
			m.config.Database.Host = ""
		}},
		{"cache enabled without url", func(m *Manager) {
			m.config.Cache.Enabled = true
			m.config.Cache.RedisURL = ""
		}},
		{"negative rate limit", func(m *Manager) { m.config.RateLimit.RequestsPerSecond = -1 }},
		{"bad log level", func(m *Manager) { m.config.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newCleanManager(t)
			tt.mutate(m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestGetters(t *testing.T) {
	m := newCleanManager(t)

	assert.Equal(t, 8080, m.GetServerConfig().Port)
	assert.Equal(t, "sqlite", m.GetHistoryConfig().Driver)
	assert.Equal(t, "localhost", m.GetDatabaseConfig().Host)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"LONGEVITY_SERVER_PORT",
		"LONGEVITY_SERVER_HOST",
		"LONGEVITY_HISTORY_DRIVER",
		"LONGEVITY_LOGGING_LEVEL",
		"LONGEVITY_CACHE_ENABLED",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
