package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvProfile, EnvLegacyProfile, EnvSecretKey, EnvDatabase, EnvTestDatabase,
		EnvUsername, EnvPassword, EnvAddr, EnvLogLevel, EnvCSRFEnabled,
	} {
		t.Setenv(k, "")
	}
}

func TestParseProfile(t *testing.T) {
	for in, want := range map[string]Profile{
		"":            Default,
		"development": Development,
		"Testing":     Testing,
		" production": Production,
		"default":     Default,
	} {
		got, err := ParseProfile(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProfile("staging")
	assert.Error(t, err)
}

func TestLoadDefaultProfile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default, cfg.Profile)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.CSRFEnabled)
	assert.Equal(t, DefaultSecretKey, cfg.SecretKey)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	require.NotNil(t, cfg.Username)
	require.NotNil(t, cfg.Password)
	assert.Equal(t, "admin", *cfg.Username)
	assert.Equal(t, "default", *cfg.Password)
}

func TestLoadProfileFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLegacyProfile, "testing")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Testing, cfg.Profile)

	t.Setenv(EnvProfile, "development")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Development, cfg.Profile)
}

func TestLoadTestingProfile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("testing")
	require.NoError(t, err)
	assert.True(t, cfg.Testing)
	assert.False(t, cfg.CSRFEnabled)
	assert.Equal(t, MemoryDatabase, cfg.Database)

	t.Setenv(EnvTestDatabase, "/tmp/notes-test.db")
	cfg, err = Load("testing")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes-test.db", cfg.Database)
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUsername, "editor")
	t.Setenv(EnvPassword, "s3cret")
	t.Setenv(EnvSecretKey, "k")

	cfg, err := Load("development")
	require.NoError(t, err)
	assert.Equal(t, "editor", *cfg.Username)
	assert.Equal(t, "s3cret", *cfg.Password)
	assert.Equal(t, "k", cfg.SecretKey)
}

func TestLoadProductionLeavesCredentialsUnset(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("production")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Nil(t, cfg.Username)
	assert.Nil(t, cfg.Password)
	assert.Len(t, cfg.SecretKey, 32)
	assert.NotEqual(t, DefaultSecretKey, cfg.SecretKey)
}

func TestLoadProductionUsesConfiguredValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUsername, "ops")
	t.Setenv(EnvPassword, "pw")
	t.Setenv(EnvSecretKey, "prod-key")

	cfg, err := Load("production")
	require.NoError(t, err)
	assert.Equal(t, "ops", *cfg.Username)
	assert.Equal(t, "pw", *cfg.Password)
	assert.Equal(t, "prod-key", cfg.SecretKey)
}

func TestLoadUnknownProfile(t *testing.T) {
	clearEnv(t)
	_, err := Load("qa")
	assert.Error(t, err)
}

func TestCSRFIsOptIn(t *testing.T) {
	for _, profile := range []string{"default", "development", "production"} {
		clearEnv(t)
		cfg, err := Load(profile)
		require.NoError(t, err)
		assert.False(t, cfg.CSRFEnabled, profile)

		t.Setenv(EnvCSRFEnabled, "true")
		cfg, err = Load(profile)
		require.NoError(t, err)
		assert.True(t, cfg.CSRFEnabled, profile)
	}

	// The testing profile never checks tokens.
	cfg, err := Load("testing")
	require.NoError(t, err)
	assert.False(t, cfg.CSRFEnabled)
}
