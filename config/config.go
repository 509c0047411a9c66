package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.4"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Environment string
	LogLevel    string
	Version     string

	// RunMigrations triggers the cross-tenant migration runner at startup,
	// before the HTTP server accepts requests.
	RunMigrations bool
}

type ServerConfig struct {
	Port int
	Host string

	// RootDomain is the public apex the API is served under, e.g.
	// "app.example.com". Workspace subdomains hang off it.
	RootDomain string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// SchemaPrefix is prepended to the sanitized workspace slug to form the
	// tenant schema name. Changing it orphans every existing tenant schema.
	SchemaPrefix string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ROOT_DOMAIN", "localhost")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "teamgrid")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_SCHEMA_PREFIX", "workspace_")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "20m")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("VERSION", VERSION)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	schemaPrefix := v.GetString("DB_SCHEMA_PREFIX")
	if schemaPrefix == "" {
		return nil, fmt.Errorf("DB_SCHEMA_PREFIX is required")
	}

	config := &Config{
		Server: ServerConfig{
			Port:       v.GetInt("SERVER_PORT"),
			Host:       v.GetString("SERVER_HOST"),
			RootDomain: v.GetString("SERVER_ROOT_DOMAIN"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			SchemaPrefix:    schemaPrefix,
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Environment:   v.GetString("ENVIRONMENT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		Version:       v.GetString("VERSION"),
	}

	return config, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
