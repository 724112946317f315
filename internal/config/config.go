package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot and the CLI.
type Config struct {
	TelegramToken   string
	DatabaseURL     string
	ReportInterval  time.Duration
	ReportTime      string
	LoadConcurrency int
	LogLevel        string
	DefaultCategory string
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory when one exists. Values already set in the
// environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:     getEnv("DATABASE_URL", "time_logger.db"),
		ReportInterval:  24 * time.Hour,
		ReportTime:      strings.TrimSpace(os.Getenv("REPORT_TIME")),
		LoadConcurrency: 4,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DefaultCategory: getEnv("DEFAULT_CATEGORY", "Miscellaneous"),
	}

	if raw := strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("REPORT_INTERVAL_HOURS must be a positive whole number, got %q", raw)
		}
		cfg.ReportInterval = time.Duration(hours) * time.Hour
	}

	if raw := strings.TrimSpace(os.Getenv("LOAD_CONCURRENCY")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("LOAD_CONCURRENCY must be a number, got %q", raw)
		}
		cfg.LoadConcurrency = n
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if c.LoadConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("LOAD_CONCURRENCY must be at least 1, got %d", c.LoadConcurrency))
	}
	if c.ReportInterval <= 0 || c.ReportInterval%time.Hour != 0 {
		problems = append(problems, fmt.Sprintf("REPORT_INTERVAL_HOURS must be a positive whole number, got %s", c.ReportInterval))
	}
	if c.ReportTime != "" {
		if _, _, err := ParseClock(c.ReportTime); err != nil {
			problems = append(problems, fmt.Sprintf("REPORT_TIME: %v", err))
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	if strings.TrimSpace(c.DefaultCategory) == "" {
		problems = append(problems, "DEFAULT_CATEGORY must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateBot checks the settings only the Telegram bot needs.
func (c Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// ParseClock parses an HH:MM wall clock time.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
