package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "file", cfg.ModelStore.Backend)
	assert.Equal(t, 0.3, cfg.Engine.MinConfidence)
	assert.Equal(t, 0.3, cfg.Engine.FallbackMin)
	assert.Equal(t, "disease-model", cfg.Engine.ModelKey)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestManager_ValidateDefaults(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	assert.NoError(t, manager.Validate())
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "bad port",
			mutate: func(c *Config) { c.Server.Port = -1 },
		},
		{
			name:   "zero rate limit",
			mutate: func(c *Config) { c.Server.RateLimit = 0 },
		},
		{
			name:   "unknown storage backend",
			mutate: func(c *Config) { c.Storage.Backend = "etcd" },
		},
		{
			name:   "sqlite without path",
			mutate: func(c *Config) { c.Storage.SQLitePath = "" },
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Storage.Backend = "postgres"
				c.Storage.Postgres.Host = ""
			},
		},
		{
			name:   "unknown model store backend",
			mutate: func(c *Config) { c.ModelStore.Backend = "s3" },
		},
		{
			name: "redis store without URL",
			mutate: func(c *Config) {
				c.ModelStore.Backend = "redis"
				c.ModelStore.RedisURL = ""
			},
		},
		{
			name:   "confidence above one",
			mutate: func(c *Config) { c.Engine.MinConfidence = 1.5 },
		},
		{
			name:   "negative fallback threshold",
			mutate: func(c *Config) { c.Engine.FallbackMin = -0.1 },
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewManager()
			require.NoError(t, err)

			tt.mutate(manager.GetConfig())

			assert.Error(t, manager.Validate())
		})
	}
}

func TestManager_PostgresConnectionStrings(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	dsn := manager.PostgresDSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=symptom_intake")
	assert.Contains(t, dsn, "sslmode=disable")

	url := manager.PostgresURL()
	assert.Contains(t, url, "postgres://")
	assert.Contains(t, url, "symptom_intake")
}
