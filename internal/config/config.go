package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal images
)

type Config struct {
	// HTTP Server
	Port           string
	BaseURL        string
	RateLimitRPM   int
	MaxUploadBytes int64
	Timezone       string

	// Logging
	LogLevel  string
	LogFormat string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	DatabaseURL  string

	// Auth
	GoogleClientID string
	JWTSecret      string
	SessionTTL     time.Duration
	AuthDevMode    bool

	// Document analysis and insights
	AnalyzerProvider    string
	GeminiAPIKey        string
	GeminiModel         string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	AnalyzerConcurrency int
	AnalyzerTimeout     time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (worker)
	SheetsSpreadsheetID          string
	SheetsSheetName              string
	GoogleServiceAccountJSON     string
	GoogleServiceAccountJSONFile string

	// Worker
	StreakSweepInterval time.Duration
}

var (
	validBackends  = []string{"memory", "sqlite", "postgres"}
	validProviders = []string{"gemini", "openai", "none"}
)

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8081"),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		Timezone:       getEnv("TIMEZONE", "Asia/Kolkata"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/forefunds.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		AuthDevMode:    getEnvBool("AUTH_DEV_MODE", false),

		AnalyzerProvider:    getEnv("ANALYZER_PROVIDER", "gemini"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash-preview-05-20"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnalyzerConcurrency: getEnvInt("ANALYZER_CONCURRENCY", 3),
		AnalyzerTimeout:     getEnvDuration("ANALYZER_TIMEOUT", 60*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "forefunds"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "forefunds_rewards"),

		SheetsSpreadsheetID:          getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsSheetName:              getEnv("SHEETS_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON:     getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountJSONFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		StreakSweepInterval: getEnvDuration("STREAK_SWEEP_INTERVAL", time.Hour),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}
	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if !oneOf(c.DataBackend, validBackends) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, "invalid DATABASE_URL: must be a postgres:// or postgresql:// URL")
		}
	}

	if !c.AuthDevMode {
		if c.GoogleClientID == "" {
			errors = append(errors, "GOOGLE_CLIENT_ID is required unless AUTH_DEV_MODE is enabled")
		}
		if len(c.JWTSecret) < 32 {
			errors = append(errors, "JWT_SECRET must be at least 32 characters unless AUTH_DEV_MODE is enabled")
		}
	}
	if c.SessionTTL < time.Minute || c.SessionTTL > 30*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be between 1 minute and 30 days", c.SessionTTL))
	}

	if !oneOf(c.AnalyzerProvider, validProviders) {
		errors = append(errors, fmt.Sprintf("invalid analyzer provider '%s': must be one of %v", c.AnalyzerProvider, validProviders))
	}
	switch c.AnalyzerProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			errors = append(errors, "GEMINI_API_KEY is required when using the gemini analyzer")
		}
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			errors = append(errors, "OPENAI_API_KEY or OPENAI_BASE_URL is required when using the openai analyzer")
		}
	}
	if c.AnalyzerConcurrency < 1 || c.AnalyzerConcurrency > 32 {
		errors = append(errors, fmt.Sprintf("invalid analyzer concurrency %d: must be between 1 and 32", c.AnalyzerConcurrency))
	}
	if c.AnalyzerTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid analyzer timeout %v: must be at least 1 second", c.AnalyzerTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsSpreadsheetID != "" {
		if c.SheetsSheetName == "" {
			errors = append(errors, "SHEETS_SHEET_NAME is required when the sheets mirror is enabled")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountJSONFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets mirror")
		}
		if c.GoogleServiceAccountJSONFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountJSONFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountJSONFile))
			}
		}
	}

	if c.StreakSweepInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid streak sweep interval %v: must be at least 1 minute", c.StreakSweepInterval))
	} else if c.StreakSweepInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid streak sweep interval %v: must be at most 24 hours", c.StreakSweepInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the configured time zone; "today" is computed in it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
