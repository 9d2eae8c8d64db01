package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REVIEW_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorageCSV, cfg.StorageDriver)
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, 5, cfg.DailyLimit)
	require.Equal(t, 0.85, cfg.DuplicateThreshold)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.Equal(t, 60*time.Second, cfg.OpenAITimeout)
	require.Equal(t, NotifyLog, cfg.NotifyDriver)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 5*1024*1024, cfg.MaxUploadBytes())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REVIEW_JWT_SECRET", "secret")
	t.Setenv("REVIEW_APP_PORT", ":9090")
	t.Setenv("REVIEW_STORAGE_DRIVER", "SQLite")
	t.Setenv("REVIEW_REVIEW_DAILY_LIMIT", "3")
	t.Setenv("REVIEW_OPENAI_TIMEOUT", "15s")
	t.Setenv("REVIEW_NOTIFY_DRIVER", "smtp")
	t.Setenv("REVIEW_SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, StorageSQLite, cfg.StorageDriver)
	require.Equal(t, 3, cfg.DailyLimit)
	require.Equal(t, 15*time.Second, cfg.OpenAITimeout)
	require.Equal(t, "smtp.example.com", cfg.SMTPHost)
	require.Equal(t, 587, cfg.SMTPPort)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {},
		"unknown storage":  {"REVIEW_JWT_SECRET": "s", "REVIEW_STORAGE_DRIVER": "mongo"},
		"postgres no url":  {"REVIEW_JWT_SECRET": "s", "REVIEW_STORAGE_DRIVER": "postgres"},
		"sendgrid no key":  {"REVIEW_JWT_SECRET": "s", "REVIEW_NOTIFY_DRIVER": "sendgrid"},
		"bad duration":     {"REVIEW_JWT_SECRET": "s", "REVIEW_SESSION_TTL": "tomorrow"},
		"unknown notifier": {"REVIEW_JWT_SECRET": "s", "REVIEW_NOTIFY_DRIVER": "pigeon"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("REVIEW_JWT_SECRET", "")
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
