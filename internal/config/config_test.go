package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("BASELINE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BASELINE_DB", "")
	t.Setenv("BASELINE_ACTOR", "")
	t.Setenv("BASELINE_ROLE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "editor", cfg.Role)
	assert.Equal(t, 1, cfg.VersionStep)
	assert.Equal(t, 10, cfg.VersionStepCritical)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"db_path: /tmp/test.db\nactor: alice\nrole: pmo\nversion_step: 2\n"), 0o644))
	t.Setenv("BASELINE_CONFIG", path)
	t.Setenv("BASELINE_DB", "")
	t.Setenv("BASELINE_ACTOR", "")
	t.Setenv("BASELINE_ROLE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "alice", cfg.Actor)
	assert.Equal(t, "pmo", cfg.Role)
	assert.Equal(t, 2, cfg.VersionStep)
	assert.Equal(t, 10, cfg.VersionStepCritical, "unset keys keep their defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: viewer\nactor: alice\n"), 0o644))
	t.Setenv("BASELINE_CONFIG", path)
	t.Setenv("BASELINE_DB", "/tmp/override.db")
	t.Setenv("BASELINE_ACTOR", "bob")
	t.Setenv("BASELINE_ROLE", "pmo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
	assert.Equal(t, "bob", cfg.Actor)
	assert.Equal(t, "pmo", cfg.Role)
}

func TestLoadTolerances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"envelope_tolerance: 0.02\nteam_warning_percent: 50\n"), 0o644))
	t.Setenv("BASELINE_CONFIG", path)
	t.Setenv("BASELINE_ROLE", "")

	cfg, err := Load()
	require.NoError(t, err)
	tol := cfg.Tolerances()
	assert.Equal(t, 0.02, tol.EnvelopeFraction)
	assert.Equal(t, 50.0, tol.TeamWarningPercent)
	assert.Equal(t, int64(1), tol.MonthlyUnits, "unset bands keep their defaults")
	assert.Equal(t, 5.0, tol.BudgetWarningPercent)
}

func TestLoadRejectsUnknownRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: superadmin\n"), 0o644))
	t.Setenv("BASELINE_CONFIG", path)
	t.Setenv("BASELINE_ROLE", "")

	_, err := Load()
	require.Error(t, err)
}
