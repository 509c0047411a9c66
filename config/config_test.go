package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "localhost", cfg.Server.RootDomain)
	assert.Equal(t, "teamgrid", cfg.Database.DBName)
	assert.Equal(t, "workspace_", cfg.Database.SchemaPrefix)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, VERSION, cfg.Version)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_SCHEMA_PREFIX", "tenant_")
	t.Setenv("RUN_MIGRATIONS", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tenant_", cfg.Database.SchemaPrefix)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidConnMaxLifetime(t *testing.T) {
	t.Setenv("DB_CONN_MAX_LIFETIME", "soon")

	_, err := LoadWithOptions(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_CONN_MAX_LIFETIME")
}

func TestConfig_EnvironmentHelpers(t *testing.T) {
	dev := &Config{Environment: "development"}
	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())

	prod := &Config{Environment: "production"}
	assert.True(t, prod.IsProduction())
	assert.False(t, prod.IsDevelopment())
}
