package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	// GIVEN: No config file and no environment overrides
	// WHEN: Configuration is loaded
	// THEN: Every default lands in the struct, cors origins included

	chdir(t, t.TempDir())

	c, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)
	assert.True(t, c.Server.Seed)
	assert.Equal(t, "./data/budget.db", c.Database.Path)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, ":8080", c.Server.Addr())
}

func TestLoad_ConfigFileOverridesCORSOrigins(t *testing.T) {
	// GIVEN: A config.yaml restricting cors origins
	// WHEN: Configuration is loaded
	// THEN: The restriction reaches ServerConfig instead of the default

	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9090\n  cors_origins:\n    - https://app.example\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	chdir(t, dir)

	c, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, []string{"https://app.example"}, c.Server.CORSOrigins)
}

func TestLoad_EnvOverridesPort(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BUDGET_SERVER_PORT", "7070")

	c, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, c.Server.Port)
}
