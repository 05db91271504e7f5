// Copyright (c) 2026 Taskora. All rights reserved.

package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/platform/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/taskora_test")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("TOKEN_SECRET", "legacy-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
}

/*
TestLoad_Defaults verifies parsing with defaults applied.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "./data/migrations", cfg.MigrationPath)
	assert.False(t, cfg.HasGoogleOAuth())
	assert.False(t, cfg.HasGithubOAuth())
}

/*
TestLoad_RejectsSharedSecret verifies the signing keys for the two
credential families must be distinct.
*/
func TestLoad_RejectsSharedSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "legacy-secret")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestLoad_MissingRequired verifies a missing required variable fails at
startup.
*/
func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)

	// t.Setenv registers the restore; the unset makes the variable truly
	// absent rather than empty.
	os.Unsetenv("DATABASE_URL")

	_, err := config.Load()
	assert.Error(t, err)
}
