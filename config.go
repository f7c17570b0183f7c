package adminkit

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries the engine's settings.
type Config struct {
	Database DatabaseConfig `json:"database" mapstructure:"database"`
	Schema   SchemaConfig   `json:"schema" mapstructure:"schema"`
	Query    QueryConfig    `json:"query" mapstructure:"query"`
	Audit    AuditConfig    `json:"audit" mapstructure:"audit"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// DatabaseConfig contains store connection settings.
type DatabaseConfig struct {
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	Database        string        `json:"database" mapstructure:"database"`
	Username        string        `json:"username" mapstructure:"username"`
	Password        string        `json:"password" mapstructure:"password"`
	SSLMode         string        `json:"ssl_mode" mapstructure:"ssl_mode"`
	MaxConnections  int           `json:"max_connections" mapstructure:"max_connections"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// SchemaConfig locates the declarative entity schema document.
type SchemaConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// QueryConfig contains listing defaults and caps.
type QueryConfig struct {
	DefaultPageSize int `json:"default_page_size" mapstructure:"default_page_size"`
	MaxPageSize     int `json:"max_page_size" mapstructure:"max_page_size"`
}

// AuditConfig controls audit-column injection on writes.
type AuditConfig struct {
	// AllowActorFallback permits falling back to the first row of the
	// fallback entity when a write needs an actor and none was supplied.
	// The fallback is always logged. When false, such writes fail
	// validation instead.
	AllowActorFallback bool `json:"allow_actor_fallback" mapstructure:"allow_actor_fallback"`
	// FallbackEntity is the entity whose first row supplies the fallback
	// actor identifier.
	FallbackEntity string `json:"fallback_entity" mapstructure:"fallback_entity"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level       string `json:"level" mapstructure:"level"`
	Development bool   `json:"development" mapstructure:"development"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "admin_console",
			Username:        "postgres",
			SSLMode:         "disable",
			MaxConnections:  10,
			ConnMaxLifetime: time.Hour,
		},
		Schema: SchemaConfig{
			Path: "schema/entities.yaml",
		},
		Query: QueryConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
		},
		Audit: AuditConfig{
			AllowActorFallback: true,
			FallbackEntity:     "users",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads configuration from the named YAML file (optional) and
// ADMINKIT_* environment variables, layered over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ADMINKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.database", defaults.Database.Database)
	v.SetDefault("database.username", defaults.Database.Username)
	v.SetDefault("database.ssl_mode", defaults.Database.SSLMode)
	v.SetDefault("database.max_connections", defaults.Database.MaxConnections)
	v.SetDefault("database.conn_max_lifetime", defaults.Database.ConnMaxLifetime)
	v.SetDefault("schema.path", defaults.Schema.Path)
	v.SetDefault("query.default_page_size", defaults.Query.DefaultPageSize)
	v.SetDefault("query.max_page_size", defaults.Query.MaxPageSize)
	v.SetDefault("audit.allow_actor_fallback", defaults.Audit.AllowActorFallback)
	v.SetDefault("audit.fallback_entity", defaults.Audit.FallbackEntity)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.development", defaults.Logging.Development)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.MaxConnections <= 0 {
		return &ConfigError{Field: "database.max_connections", Message: "must be greater than 0"}
	}
	if c.Query.DefaultPageSize <= 0 {
		return &ConfigError{Field: "query.default_page_size", Message: "must be greater than 0"}
	}
	if c.Query.MaxPageSize < c.Query.DefaultPageSize {
		return &ConfigError{Field: "query.max_page_size", Message: "must be greater than or equal to default_page_size"}
	}
	if c.Audit.AllowActorFallback && c.Audit.FallbackEntity == "" {
		return &ConfigError{Field: "audit.fallback_entity", Message: "required when actor fallback is enabled"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
