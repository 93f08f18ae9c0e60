package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"news_alert/internal/trigger"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "DATABASE_PATH", "LOG_LEVEL", "ALLOWED_USERS",
	"TRIGGER_CONFIG", "TRIGGER_TIMEZONE", "POLL_INTERVAL", "FETCH_RETRIES", "METRICS_ADDR",
}

func TestLoad(t *testing.T) {
	defaults := func(token string) *Config {
		return &Config{
			TelegramBotToken: token,
			DatabasePath:     "./data/bot.db",
			LogLevel:         "info",
			TriggerConfig:    "./triggers.txt",
			TriggerTimezone:  "EST",
			PollInterval:     time.Minute,
			FetchRetries:     3,
		}
	}

	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "token only, defaults applied",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "test-token"},
			want: defaults("test-token"),
		},
		{
			name: "all values set",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"DATABASE_PATH":      "/tmp/bot.db",
				"LOG_LEVEL":          "debug",
				"ALLOWED_USERS":      "111,222,333",
				"TRIGGER_CONFIG":     "/etc/news/triggers.txt",
				"TRIGGER_TIMEZONE":   "UTC",
				"POLL_INTERVAL":      "30s",
				"FETCH_RETRIES":      "0",
				"METRICS_ADDR":       ":9090",
			},
			want: &Config{
				TelegramBotToken: "tok",
				DatabasePath:     "/tmp/bot.db",
				LogLevel:         "debug",
				AllowedUsers:     []int64{111, 222, 333},
				TriggerConfig:    "/etc/news/triggers.txt",
				TriggerTimezone:  "UTC",
				PollInterval:     30 * time.Second,
				FetchRetries:     0,
				MetricsAddr:      ":9090",
			},
		},
		{
			name: "allowed users with spaces",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"ALLOWED_USERS":      " 10 , 20 , ",
			},
			want: func() *Config {
				c := defaults("tok")
				c.AllowedUsers = []int64{10, 20}
				return c
			}(),
		},
		{
			name:    "invalid user id",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "ALLOWED_USERS": "123,abc"},
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "TRIGGER_TIMEZONE": "Mars/Olympus"},
			wantErr: true,
		},
		{
			name:    "invalid poll interval",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "POLL_INTERVAL": "soon"},
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "POLL_INTERVAL": "0s"},
			wantErr: true,
		},
		{
			name:    "negative retries",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "FETCH_RETRIES": "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		wantName string
	}{
		{name: "default reference zone", zone: "", wantName: trigger.ReferenceZone.String()},
		{name: "EST alias", zone: "EST", wantName: trigger.ReferenceZone.String()},
		{name: "IANA name", zone: "UTC", wantName: "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := (&Config{TriggerTimezone: tt.zone}).Location()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantName, loc.String()); diff != "" {
				t.Errorf("Location() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	loc, _ := (&Config{}).Location()
	if loc != trigger.ReferenceZone {
		t.Error("expected the shared reference zone for EST")
	}
}

func TestIsUserAllowed(t *testing.T) {
	tests := []struct {
		name         string
		allowedUsers []int64
		userID       int64
		want         bool
	}{
		{
			name:         "empty list allows everyone",
			allowedUsers: nil,
			userID:       42,
			want:         true,
		},
		{
			name:         "user in list",
			allowedUsers: []int64{10, 20, 30},
			userID:       20,
			want:         true,
		},
		{
			name:         "user not in list",
			allowedUsers: []int64{10, 20, 30},
			userID:       99,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AllowedUsers: tt.allowedUsers}
			got := cfg.IsUserAllowed(tt.userID)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("IsUserAllowed() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
