package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Session   SessionConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// APIConfig describes the farm management backend the session talks to.
type APIConfig struct {
	BaseURL string
	// AuthScheme prefixes the token in the Authorization header ("Bearer" or
	// "Token"). It has no default: it must match the deployed backend.
	AuthScheme      string
	Timeout         time.Duration
	RefreshDisabled bool
}

// SessionConfig controls where credentials live and how they are checked.
type SessionConfig struct {
	TokenPath       string
	ValidateOnStart bool
}

// ReportingConfig holds snapshot scheduler settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for MongoDB. An empty URI disables snapshot storage.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// Both fields empty disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether snapshots should be written to MongoDB.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// Enabled reports whether Google Sheets export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	timeout, err := getenvDuration("API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	refreshDisabled, err := getenvBool("API_REFRESH_DISABLED", false)
	if err != nil {
		return nil, err
	}
	validateOnStart, err := getenvBool("SESSION_VALIDATE_ON_START", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		API: APIConfig{
			BaseURL:         getenvWithDefault("API_BASE_URL", "http://localhost:8000/api"),
			AuthScheme:      os.Getenv("API_AUTH_SCHEME"),
			Timeout:         timeout,
			RefreshDisabled: refreshDisabled,
		},
		Session: SessionConfig{
			TokenPath:       os.Getenv("SESSION_TOKEN_PATH"),
			ValidateOnStart: validateOnStart,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "farmdash"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if err := c.API.Validate(); err != nil {
		return err
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	return nil
}

// Validate checks the backend settings on their own, for tools that do not
// need the server sections.
func (c APIConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("API_BASE_URL must not be empty")
	}

	switch strings.ToLower(c.AuthScheme) {
	case "":
		return errors.New("API_AUTH_SCHEME must be provided (Bearer or Token, as the backend expects)")
	case "bearer", "token":
	default:
		return fmt.Errorf("API_AUTH_SCHEME %q is not supported, use Bearer or Token", c.AuthScheme)
	}

	if c.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a duration: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s is not a boolean: %w", key, err)
	}
	return b, nil
}
