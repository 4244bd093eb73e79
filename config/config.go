package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"badgekit/adapters/redis"
	"badgekit/adapters/sqlx"
	"badgekit/engine"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" env:"BADGEKIT_ENV"`
	Profile     string      `json:"profile" env:"BADGEKIT_PROFILE"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Award storage configuration
	Storage StorageConfig `json:"storage"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Badge thresholds
	Badges BadgesConfig `json:"badges"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"BADGEKIT_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"BADGEKIT_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"BADGEKIT_SERVER_CORS_ORIGIN"`
	APIKeys           []string      `json:"api_keys,omitempty" env:"BADGEKIT_SERVER_API_KEYS"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"BADGEKIT_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"BADGEKIT_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"BADGEKIT_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"BADGEKIT_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"BADGEKIT_SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds award store adapter configuration
type StorageConfig struct {
	Adapter string       `json:"adapter" env:"BADGEKIT_STORAGE_ADAPTER"`
	Redis   redis.Config `json:"redis,omitempty"`
	SQL     sqlx.Config  `json:"sql,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" env:"BADGEKIT_LOG_LEVEL"`
	Format string `json:"format" env:"BADGEKIT_LOG_FORMAT"`
	Output string `json:"output" env:"BADGEKIT_LOG_OUTPUT"`
}

// BadgesConfig holds the numeric threshold for every thresholded badge rule.
// The engine treats them as opaque constants.
type BadgesConfig struct {
	DisciplinedMinScore     int `json:"disciplined_min_score" env:"BADGEKIT_BADGE_DISCIPLINED_MIN_SCORE"`
	PeerPressureMinScore    int `json:"peer_pressure_min_score" env:"BADGEKIT_BADGE_PEER_PRESSURE_MIN_SCORE"`
	TeacherMinScore         int `json:"teacher_min_score" env:"BADGEKIT_BADGE_TEACHER_MIN_SCORE"`
	NiceAnswerMinScore      int `json:"nice_answer_min_score" env:"BADGEKIT_BADGE_NICE_ANSWER_MIN_SCORE"`
	NiceQuestionMinScore    int `json:"nice_question_min_score" env:"BADGEKIT_BADGE_NICE_QUESTION_MIN_SCORE"`
	SelfLearnerMinScore     int `json:"self_learner_min_score" env:"BADGEKIT_BADGE_SELF_LEARNER_MIN_SCORE"`
	PopularQuestionMinViews int `json:"popular_question_min_views" env:"BADGEKIT_BADGE_POPULAR_QUESTION_MIN_VIEWS"`
	CivicDutyMinVotes       int `json:"civic_duty_min_votes" env:"BADGEKIT_BADGE_CIVIC_DUTY_MIN_VOTES"`
	GuruMinScore            int `json:"guru_min_score" env:"BADGEKIT_BADGE_GURU_MIN_SCORE"`
	EnlightenedMinScore     int `json:"enlightened_min_score" env:"BADGEKIT_BADGE_ENLIGHTENED_MIN_SCORE"`
}

// Thresholds converts the section into the engine's threshold set.
func (b BadgesConfig) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		DisciplinedMinScore:     b.DisciplinedMinScore,
		PeerPressureMinScore:    b.PeerPressureMinScore,
		TeacherMinScore:         b.TeacherMinScore,
		NiceAnswerMinScore:      b.NiceAnswerMinScore,
		NiceQuestionMinScore:    b.NiceQuestionMinScore,
		SelfLearnerMinScore:     b.SelfLearnerMinScore,
		PopularQuestionMinViews: b.PopularQuestionMinViews,
		CivicDutyMinVotes:       b.CivicDutyMinVotes,
		GuruMinScore:            b.GuruMinScore,
		EnlightenedMinScore:     b.EnlightenedMinScore,
	}
}

// Validate rejects missing thresholds.
func (b BadgesConfig) Validate() error {
	return b.Thresholds().Validate()
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	file, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Environment variables override file values
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	t := engine.DefaultThresholds()
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Server: ServerConfig{
			Address:           ":8080",
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Adapter: "memory",
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Badges: BadgesConfig{
			DisciplinedMinScore:     t.DisciplinedMinScore,
			PeerPressureMinScore:    t.PeerPressureMinScore,
			TeacherMinScore:         t.TeacherMinScore,
			NiceAnswerMinScore:      t.NiceAnswerMinScore,
			NiceQuestionMinScore:    t.NiceQuestionMinScore,
			SelfLearnerMinScore:     t.SelfLearnerMinScore,
			PopularQuestionMinViews: t.PopularQuestionMinViews,
			CivicDutyMinVotes:       t.CivicDutyMinVotes,
			GuruMinScore:            t.GuruMinScore,
			EnlightenedMinScore:     t.EnlightenedMinScore,
		},
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if err := c.Badges.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("badges config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	// Create a copy for redaction
	cfg := *c

	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
