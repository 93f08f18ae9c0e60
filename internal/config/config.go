// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"news_alert/internal/trigger"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64
	TriggerConfig    string
	TriggerTimezone  string
	PollInterval     time.Duration
	FetchRetries     int
	MetricsAddr      string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	allowedUsers, err := parseUserIDs(os.Getenv("ALLOWED_USERS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TelegramBotToken: token,
		DatabasePath:     envOr("DATABASE_PATH", "./data/bot.db"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		AllowedUsers:     allowedUsers,
		TriggerConfig:    envOr("TRIGGER_CONFIG", "./triggers.txt"),
		TriggerTimezone:  envOr("TRIGGER_TIMEZONE", "EST"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	cfg.PollInterval, err = time.ParseDuration(envOr("POLL_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}

	cfg.FetchRetries, err = strconv.Atoi(envOr("FETCH_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_RETRIES: %w", err)
	}
	if cfg.FetchRetries < 0 {
		return nil, fmt.Errorf("FETCH_RETRIES must not be negative, got %d", cfg.FetchRetries)
	}

	return cfg, nil
}

// Location returns the zone that BEFORE and AFTER timestamps in the trigger
// configuration are read in. "EST" means the fixed UTC-5 reference zone;
// anything else is looked up as an IANA name.
func (c *Config) Location() (*time.Location, error) {
	if c.TriggerTimezone == "" || c.TriggerTimezone == "EST" {
		return trigger.ReferenceZone, nil
	}
	loc, err := time.LoadLocation(c.TriggerTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_TIMEZONE %q: %w", c.TriggerTimezone, err)
	}
	return loc, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	return len(c.AllowedUsers) == 0 || lo.Contains(c.AllowedUsers, userID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
		}
		ids = append(ids, uid)
	}
	return ids, nil
}
