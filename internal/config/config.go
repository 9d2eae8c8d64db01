package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageCSV      = "csv"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Notification drivers.
const (
	NotifyLog      = "log"
	NotifySMTP     = "smtp"
	NotifySendgrid = "sendgrid"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	StorageDriver       string
	DataDir             string
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	TokenTTL            time.Duration
	SessionTTL          time.Duration
	DailyLimit          int
	DuplicateThreshold  float64
	MaxUploadMB         int
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	OpenAITimeout       time.Duration
	NotifyDriver        string
	NotifyRecipient     string
	NotifyFrom          string
	NotifySubjectPrefix string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	SendgridAPIKey      string
	NATSURL             string
	NATSSubject         string
	DashboardCacheTTL   time.Duration
	LoginRateLimit      int
	LoginRateWindow     time.Duration
	CORSAllowOrigins    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c Config) MaxUploadBytes() int {
	return c.MaxUploadMB * 1024 * 1024
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Python Warriors Review API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.driver", StorageCSV)
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("jwt.ttl", "12h")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("review.daily_limit", 5)
	v.SetDefault("review.duplicate_threshold", 0.85)
	v.SetDefault("review.max_upload_mb", 5)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", "60s")
	v.SetDefault("notify.driver", NotifyLog)
	v.SetDefault("notify.subject_prefix", "Python Warriors")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("nats.subject", "review.notifications")
	v.SetDefault("dashboard.cache_ttl", "1m")
	v.SetDefault("login.rate_limit", 10)
	v.SetDefault("login.rate_window", "1m")
	v.SetDefault("cors.allow_origins", "*")

	durations := map[string]time.Duration{}
	for _, key := range []string{"jwt.ttl", "session.ttl", "openai.timeout", "dashboard.cache_ttl", "login.rate_window"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		StorageDriver:       strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		DataDir:             v.GetString("storage.data_dir"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		TokenTTL:            durations["jwt.ttl"],
		SessionTTL:          durations["session.ttl"],
		DailyLimit:          v.GetInt("review.daily_limit"),
		DuplicateThreshold:  v.GetFloat64("review.duplicate_threshold"),
		MaxUploadMB:         v.GetInt("review.max_upload_mb"),
		OpenAIAPIKey:        v.GetString("openai.api_key"),
		OpenAIModel:         v.GetString("openai.model"),
		OpenAIBaseURL:       v.GetString("openai.base_url"),
		OpenAITimeout:       durations["openai.timeout"],
		NotifyDriver:        strings.ToLower(strings.TrimSpace(v.GetString("notify.driver"))),
		NotifyRecipient:     v.GetString("notify.recipient"),
		NotifyFrom:          v.GetString("notify.from"),
		NotifySubjectPrefix: v.GetString("notify.subject_prefix"),
		SMTPHost:            v.GetString("smtp.host"),
		SMTPPort:            v.GetInt("smtp.port"),
		SMTPUsername:        v.GetString("smtp.username"),
		SMTPPassword:        v.GetString("smtp.password"),
		SendgridAPIKey:      v.GetString("sendgrid.api_key"),
		NATSURL:             v.GetString("nats.url"),
		NATSSubject:         v.GetString("nats.subject"),
		DashboardCacheTTL:   durations["dashboard.cache_ttl"],
		LoginRateLimit:      v.GetInt("login.rate_limit"),
		LoginRateWindow:     durations["login.rate_window"],
		CORSAllowOrigins:    v.GetString("cors.allow_origins"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageDriver {
	case StorageCSV, StorageSQLite:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url is required for the postgres storage driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	switch cfg.NotifyDriver {
	case NotifyLog:
	case NotifySMTP:
		if cfg.SMTPHost == "" {
			return Config{}, fmt.Errorf("smtp host is required for the smtp notify driver")
		}
	case NotifySendgrid:
		if cfg.SendgridAPIKey == "" {
			return Config{}, fmt.Errorf("sendgrid api key is required for the sendgrid notify driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown notify driver %q", cfg.NotifyDriver)
	}

	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = 5
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 5
	}

	return cfg, nil
}
