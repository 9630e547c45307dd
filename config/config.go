package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration, read from the environment.
type Config struct {
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	RedisPrefix string

	GoogleAPIKey      string
	CommitteesListURL string
	FeedTimezone      *time.Location
	HTTPTimeout       time.Duration

	ExportPath string

	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	SpreadsheetID         string
	SheetID               int64
	ServiceAccountKeyPath string

	KafkaBrokers []string
	KafkaTopic   string

	PushgatewayURL string

	Port            string
	RefreshSchedule string

	LogLevel  string
	LogFormat string
}

// Load reads .env if present (non-fatal if missing) and builds a Config from
// the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		RedisAddr:             get("REDIS_ADDR", DefaultRedisAddr),
		RedisPass:             getenv("REDIS_PASS"),
		RedisPrefix:           get("REDIS_PREFIX", DefaultRedisPrefix),
		GoogleAPIKey:          get("GOOGLE_API_KEY", ""),
		CommitteesListURL:     get("COMMITTEES_LIST_URL", DefaultCommitteesListURL),
		HTTPTimeout:           DefaultHTTPTimeout,
		ExportPath:            get("EXPORT_PATH", DefaultExportPath),
		S3Bucket:              get("S3_BUCKET", ""),
		S3Region:              get("S3_REGION", ""),
		S3Profile:             get("S3_PROFILE", ""),
		S3Prefix:              get("S3_PREFIX", ""),
		S3UsePathStyle:        strings.EqualFold(get("S3_USE_PATH_STYLE", ""), "true"),
		SpreadsheetID:         get("GOOGLE_SPREADSHEET_ID", ""),
		ServiceAccountKeyPath: get("GOOGLE_SERVICE_ACCOUNT_KEY", ""),
		KafkaTopic:            get("KAFKA_TOPIC", DefaultKafkaTopic),
		PushgatewayURL:        get("PUSHGATEWAY_URL", ""),
		Port:                  get("PORT", DefaultPort),
		RefreshSchedule:       get("REFRESH_SCHEDULE", ""),
		LogLevel:              get("LOG_LEVEL", "info"),
		LogFormat:             get("LOG_FORMAT", "console"),
	}

	if v := get("REDIS_DB", ""); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB %q", v)
		}
		cfg.RedisDB = db
	}

	if v := get("GOOGLE_SHEET_ID", ""); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid GOOGLE_SHEET_ID %q", v)
		}
		cfg.SheetID = id
	}

	if v := get("HTTP_TIMEOUT_SECONDS", ""); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS %q", v)
		}
		cfg.HTTPTimeout = time.Duration(secs) * time.Second
	}

	loc, err := time.LoadLocation(get("FEED_TIMEZONE", DefaultFeedTimezone))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TIMEZONE: %w", err)
	}
	cfg.FeedTimezone = loc

	if brokers := get("KAFKA_BOOTSTRAP_SERVERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.S3Prefix != "" {
		cfg.S3Prefix = strings.Trim(cfg.S3Prefix, "/") + "/"
	}

	return cfg, nil
}

// SheetsEnabled reports whether the Google Sheets export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.SpreadsheetID != "" && c.ServiceAccountKeyPath != ""
}
