package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from the package directory where no config.yaml exists, so load
	// falls back to environment defaults.
	cfg, err := Load("test-version")
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, "docquery_engine", cfg.Database.Database)
	assert.Equal(t, "text-embedding-3-small", cfg.AI.EmbeddingModel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGPORT", "6432")
	t.Setenv("AI_LLM_MODEL", "gpt-4o")

	cfg, err := Load("dev")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "gpt-4o", cfg.AI.LLMModel)
}

func TestConnectionString(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "docquery",
		Password: "secret",
		Database: "docquery_engine",
		SSLMode:  "disable",
	}

	connStr := dbCfg.ConnectionString()
	assert.True(t, strings.Contains(connStr, "host=localhost"))
	assert.True(t, strings.Contains(connStr, "dbname=docquery_engine"))
	assert.True(t, strings.Contains(connStr, "sslmode=disable"))
}
