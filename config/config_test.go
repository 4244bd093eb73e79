package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Test loading default config
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify defaults
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Storage.Adapter)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 150, cfg.Badges.PopularQuestionMinViews)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BADGEKIT_ENV", "staging")
	t.Setenv("BADGEKIT_SERVER_ADDR", ":9191")
	t.Setenv("BADGEKIT_LOG_LEVEL", "debug")
	t.Setenv("BADGEKIT_BADGE_GURU_MIN_SCORE", "25")
	t.Setenv("BADGEKIT_SERVER_READ_TIMEOUT", "15s")
	t.Setenv("BADGEKIT_SERVER_API_KEYS", "k1,k2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Environment)
	assert.Equal(t, ":9191", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 25, cfg.Badges.GuruMinScore)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
}

func TestLoadFromFile(t *testing.T) {
	// Create a temporary config file
	configContent := `{
		"environment": "testing",
		"server": {
			"address": ":9090"
		},
		"storage": {
			"adapter": "memory"
		},
		"badges": {
			"nice_answer_min_score": 4
		}
	}`

	tmpFile, err := os.CreateTemp("", "config_test_*.json")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(configContent)
	require.NoError(t, err)
	tmpFile.Close()

	// Load config from file
	cfg, err := LoadFromFile(tmpFile.Name())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify loaded values override defaults; untouched sections keep theirs
	assert.Equal(t, EnvTesting, cfg.Environment)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 4, cfg.Badges.NiceAnswerMinScore)
	assert.Equal(t, 2, cfg.Badges.NiceQuestionMinScore)
}

func TestLoadFromFile_InvalidPath(t *testing.T) {
	_, err := LoadFromFile("")
	assert.Error(t, err)

	_, err = LoadFromFile("config.yaml")
	assert.Error(t, err)

	_, err = LoadFromFile("does_not_exist.json")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:        "empty environment",
			mutate:      func(c *Config) { c.Environment = "" },
			expectError: "environment cannot be empty",
		},
		{
			name:        "unknown storage adapter",
			mutate:      func(c *Config) { c.Storage.Adapter = "cassandra" },
			expectError: "storage config",
		},
		{
			name:        "sql adapter without dsn",
			mutate:      func(c *Config) { c.Storage.Adapter = "sql" },
			expectError: "dsn",
		},
		{
			name:        "missing threshold",
			mutate:      func(c *Config) { c.Badges.TeacherMinScore = 0 },
			expectError: "teacher_min_score must be positive",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: "logging config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfig_StringRedactsSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Redis.Password = "hunter2"
	cfg.Storage.SQL.DSN = "postgres://user:secret@db/badges"

	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "secret@db")
	assert.Contains(t, out, "[REDACTED]")
}

func TestBadgesConfig_Thresholds(t *testing.T) {
	cfg := DefaultConfig()
	th := cfg.Badges.Thresholds()
	assert.Equal(t, cfg.Badges.CivicDutyMinVotes, th.CivicDutyMinVotes)
	assert.NoError(t, th.Validate())
}
