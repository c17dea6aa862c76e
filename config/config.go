// Package config loads the application settings for a named profile.
//
// Values come from the process environment, optionally seeded from a .env
// file. The loaded Config is immutable and passed explicitly to the server
// and the CLI commands.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Profile selects a configuration bundle.
type Profile string

const (
	Development Profile = "development"
	Testing     Profile = "testing"
	Production  Profile = "production"
	Default     Profile = "default"
)

const (
	DefaultSecretKey = "dev-key-please-change-in-production"
	DefaultDatabase  = "data/notepost.db"
	DefaultUsername  = "admin"
	DefaultPassword  = "default"
	DefaultAddr      = ":8080"

	// MemoryDatabase selects a private in-memory SQLite store.
	MemoryDatabase = ":memory:"
)

// Environment keys.
const (
	EnvProfile       = "FLASKR_ENV"
	EnvLegacyProfile = "FLASK_ENV"
	EnvSecretKey     = "SECRET_KEY"
	EnvDatabase      = "DATABASE"
	EnvTestDatabase  = "TEST_DATABASE"
	EnvUsername      = "FLASKR_USERNAME"
	EnvPassword      = "FLASKR_PASSWORD"
	EnvAddr          = "ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvCSRFEnabled   = "CSRF_ENABLED"
)

// Config holds the process-wide settings.
type Config struct {
	Profile   Profile
	SecretKey string

	// Database is a SQLite file path, MemoryDatabase, or a postgres:// URL.
	Database string

	// Username and Password are nil when the profile leaves them unset.
	// Nothing compares equal to an unset credential.
	Username *string
	Password *string

	Debug       bool
	Testing     bool
	CSRFEnabled bool

	Addr     string
	LogLevel string
}

// ParseProfile converts a profile name. The empty string means Default.
func ParseProfile(name string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return Default, nil
	case Development, Testing, Production, Default:
		return p, nil
	default:
		return "", fmt.Errorf("unknown configuration profile %q", name)
	}
}

// LoadDotEnv seeds the environment from a .env file in the working directory.
// A missing file is not an error; variables already set win.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load builds the Config for the named profile. An empty name falls back to
// FLASKR_ENV, then FLASK_ENV, then the default profile.
func Load(name string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	if name == "" {
		name = firstSet(v, EnvProfile, EnvLegacyProfile)
	}
	profile, err := ParseProfile(name)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Profile:     profile,
		SecretKey:   stringOr(v, EnvSecretKey, DefaultSecretKey),
		Database:    stringOr(v, EnvDatabase, DefaultDatabase),
		Username:    ptr(stringOr(v, EnvUsername, DefaultUsername)),
		Password:    ptr(stringOr(v, EnvPassword, DefaultPassword)),
		CSRFEnabled: v.GetBool(EnvCSRFEnabled),
		Addr:        stringOr(v, EnvAddr, DefaultAddr),
		LogLevel:    stringOr(v, EnvLogLevel, "info"),
	}

	switch profile {
	case Development, Default:
		cfg.Debug = true
		cfg.LogLevel = stringOr(v, EnvLogLevel, "debug")
	case Testing:
		cfg.Testing = true
		cfg.CSRFEnabled = false
		cfg.Database = stringOr(v, EnvTestDatabase, MemoryDatabase)
	case Production:
		if cfg.SecretKey = v.GetString(EnvSecretKey); cfg.SecretKey == "" {
			cfg.SecretKey, err = randomKey(16)
			if err != nil {
				return nil, fmt.Errorf("generating secret key: %w", err)
			}
		}
		// Production never falls back to the well-known credentials.
		cfg.Username = optional(v, EnvUsername)
		cfg.Password = optional(v, EnvPassword)
	}

	return cfg, nil
}

// ForTesting returns the testing profile with a fixed database location,
// ignoring the environment.
func ForTesting(database string) *Config {
	return &Config{
		Profile:   Testing,
		SecretKey: DefaultSecretKey,
		Database:  database,
		Username:  ptr(DefaultUsername),
		Password:  ptr(DefaultPassword),
		Testing:   true,
		Addr:      DefaultAddr,
		LogLevel:  "info",
	}
}

func stringOr(v *viper.Viper, key, fallback string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return fallback
}

func optional(v *viper.Viper, key string) *string {
	if s := v.GetString(key); s != "" {
		return &s
	}
	return nil
}

func firstSet(v *viper.Viper, keys ...string) string {
	for _, k := range keys {
		if s := v.GetString(k); s != "" {
			return s
		}
	}
	return ""
}

func ptr(s string) *string { return &s }

func randomKey(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
