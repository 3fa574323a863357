// Package config provides configuration management for the symptom intake
// server, layering a config file, environment variables and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	ModelStore ModelStoreConfig `mapstructure:"model_store"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// StorageConfig selects and configures the record/corpus backend.
type StorageConfig struct {
	// Backend is "sqlite" (embedded, default) or "postgres".
	Backend        string         `mapstructure:"backend"`
	SQLitePath     string         `mapstructure:"sqlite_path"`
	MigrationsPath string         `mapstructure:"migrations_path"`
	Postgres       PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds the PostgreSQL connection settings.
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ModelStoreConfig selects where trained models are persisted.
type ModelStoreConfig struct {
	// Backend is "file" (default) or "redis".
	Backend  string        `mapstructure:"backend"`
	FileDir  string        `mapstructure:"file_dir"`
	RedisURL string        `mapstructure:"redis_url"`
	RedisTTL time.Duration `mapstructure:"redis_ttl"`
}

// EngineConfig tunes the classification engine thresholds.
type EngineConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
	FallbackMin   float64 `mapstructure:"fallback_min"`
	CacheSize     int     `mapstructure:"cache_size"`
	ModelKey      string  `mapstructure:"model_key"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Manager loads and validates configuration using Viper.
type Manager struct {
	config *Config
}

// NewManager creates a configuration manager and loads configuration.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/symptom-intake-server/")

	viper.SetEnvPrefix("SYMPTOM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Config file is optional; defaults and env vars suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 50)
	viper.SetDefault("server.rate_burst", 100)

	// Storage defaults: embedded SQLite needs no external services.
	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.sqlite_path", "./data/intake.db")
	viper.SetDefault("storage.migrations_path", "./migrations")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", 5432)
	viper.SetDefault("storage.postgres.database", "symptom_intake")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "")
	viper.SetDefault("storage.postgres.ssl_mode", "disable")
	viper.SetDefault("storage.postgres.max_conns", 25)
	viper.SetDefault("storage.postgres.min_conns", 2)
	viper.SetDefault("storage.postgres.conn_max_lifetime", "1h")
	viper.SetDefault("storage.postgres.conn_max_idle_time", "30m")

	// Model store defaults
	viper.SetDefault("model_store.backend", "file")
	viper.SetDefault("model_store.file_dir", "./data/models")
	viper.SetDefault("model_store.redis_url", "redis://localhost:6379")
	viper.SetDefault("model_store.redis_ttl", "0")

	// Engine defaults
	viper.SetDefault("engine.min_confidence", 0.3)
	viper.SetDefault("engine.fallback_min", 0.3)
	viper.SetDefault("engine.cache_size", 1024)
	viper.SetDefault("engine.model_key", "disease-model")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Validate checks the loaded configuration for inconsistencies.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive: %f", config.Server.RateLimit)
	}

	switch config.Storage.Backend {
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		pg := config.Storage.Postgres
		if pg.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if pg.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if pg.Username == "" {
			return fmt.Errorf("postgres username is required")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", config.Storage.Backend)
	}

	switch config.ModelStore.Backend {
	case "file":
		if config.ModelStore.FileDir == "" {
			return fmt.Errorf("model store directory is required")
		}
	case "redis":
		if config.ModelStore.RedisURL == "" {
			return fmt.Errorf("redis URL is required")
		}
	default:
		return fmt.Errorf("unknown model store backend: %s", config.ModelStore.Backend)
	}

	if config.Engine.MinConfidence < 0 || config.Engine.MinConfidence > 1 {
		return fmt.Errorf("min confidence out of range: %f", config.Engine.MinConfidence)
	}
	if config.Engine.FallbackMin < 0 || config.Engine.FallbackMin > 1 {
		return fmt.Errorf("fallback threshold out of range: %f", config.Engine.FallbackMin)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// PostgresDSN returns the libpq-style connection string for the configured
// PostgreSQL storage backend.
func (m *Manager) PostgresDSN() string {
	pg := m.config.Storage.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.Username, pg.Password, pg.Database, pg.SSLMode)
}

// PostgresURL returns the URL form used by the migration runner.
func (m *Manager) PostgresURL() string {
	pg := m.config.Storage.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pg.Username, pg.Password, pg.Host, pg.Port, pg.Database, pg.SSLMode)
}
