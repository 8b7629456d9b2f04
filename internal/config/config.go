package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is loaded once at startup and read-only afterwards.
type Config struct {
	// Collection settings
	SourcesPath       string
	QuotaPerSource    int           // articles kept per publication
	RecencyWindow     time.Duration // max age of a dated entry
	MinScore          float64       // admission threshold for scored candidates
	EnforceMinScore   bool          // drop extracted articles below MinScore
	MaxExtractTries   int           // extraction attempts per publication
	FeedEntryCap      int           // entries considered per feed
	SitemapEntryCap   int           // URL-set entries considered per sitemap
	SitemapChildCap   int           // child sitemaps followed from an index
	MinSitemapResults int           // below this, feeds are tried as well

	// Network settings
	FeedTimeout    time.Duration
	SitemapTimeout time.Duration
	ArticleTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Summarizer settings
	GeminiAPIKey      string
	MaxGeminiRequests int // 0 = unlimited

	// Output settings
	OutputDir string

	// Google Sheets / Drive sync (optional)
	SheetID         string
	CredentialsPath string
	DriveFolderID   string

	// Scheduling
	CronExpression string // empty = run once and exit

	Debug bool
}

// Load reads configuration from the environment with production defaults.
func Load() (*Config, error) {
	cfg := &Config{
		SourcesPath:       getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/sources.yaml"),
		QuotaPerSource:    getEnvIntOrDefault("QUOTA_PER_SOURCE", 3),
		RecencyWindow:     time.Duration(getEnvIntOrDefault("RECENCY_WINDOW_DAYS", 14)) * 24 * time.Hour,
		MinScore:          getEnvFloatOrDefault("MIN_RELEVANCE_SCORE", 1.0),
		EnforceMinScore:   os.Getenv("ENFORCE_MIN_SCORE") == "true",
		MaxExtractTries:   getEnvIntOrDefault("MAX_EXTRACT_TRIES", 20),
		FeedEntryCap:      getEnvIntOrDefault("FEED_ENTRY_CAP", 20),
		SitemapEntryCap:   getEnvIntOrDefault("SITEMAP_ENTRY_CAP", 50),
		SitemapChildCap:   getEnvIntOrDefault("SITEMAP_CHILD_CAP", 3),
		MinSitemapResults: getEnvIntOrDefault("MIN_SITEMAP_RESULTS", 3),

		FeedTimeout:    10 * time.Second,
		SitemapTimeout: 15 * time.Second,
		ArticleTimeout: 20 * time.Second,
		RetryAttempts:  getEnvIntOrDefault("RETRY_ATTEMPTS", 3),
		RetryDelay:     5 * time.Second,

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		MaxGeminiRequests: getEnvIntOrDefault("MAX_GEMINI_REQUESTS", 0),

		OutputDir: getEnvOrDefault("OUTPUT_DIR", "output"),

		SheetID:         os.Getenv("GOOGLE_SHEET_ID"),
		CredentialsPath: getEnvOrDefault("GOOGLE_CREDENTIALS_PATH", "credentials.json"),
		DriveFolderID:   os.Getenv("DRIVE_FOLDER_ID"),

		CronExpression: os.Getenv("COLLECT_CRON"),

		Debug: os.Getenv("DEBUG") == "true",
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.QuotaPerSource <= 0 {
		return fmt.Errorf("QUOTA_PER_SOURCE must be positive")
	}
	if c.RecencyWindow <= 0 {
		return fmt.Errorf("RECENCY_WINDOW_DAYS must be positive")
	}
	if c.MinScore < 0 {
		return fmt.Errorf("MIN_RELEVANCE_SCORE must not be negative")
	}
	if c.MaxExtractTries <= 0 {
		return fmt.Errorf("MAX_EXTRACT_TRIES must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
