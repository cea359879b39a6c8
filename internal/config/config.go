package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr         string
	APIBaseURL         string
	APITimeout         time.Duration
	StorageDSN         string
	LogLevel           string
	CatalogCacheTTL    time.Duration
	CheckoutClearDelay time.Duration
	AdminPageSize      int
	EnableTracing      bool
}

// LoadConfig reads the environment, loading a .env file first when one is
// present in the working directory.
func LoadConfig(log logrus.FieldLogger) *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.WithError(err).Warn("error loading .env file")
		} else {
			log.Debug(".env file loaded")
		}
	}

	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", "127.0.0.1:8080"),
		APIBaseURL:         strings.TrimSuffix(getEnv("API_BASE_URL", ""), "/"),
		APITimeout:         getDuration(log, "API_TIMEOUT", 10*time.Second),
		StorageDSN:         getEnv("STORAGE_DSN", defaultStorageDSN()),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CatalogCacheTTL:    getDuration(log, "CATALOG_CACHE_TTL", 2*time.Minute),
		CheckoutClearDelay: getDuration(log, "CHECKOUT_CLEAR_DELAY", 500*time.Millisecond),
		AdminPageSize:      getInt(log, "ADMIN_PAGE_SIZE", 10),
		EnableTracing:      getEnv("ENABLE_TRACING", "") == "1",
	}
}

// Validate rejects configurations the gateway cannot start with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return errors.Wrap(err, "invalid API_BASE_URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("API_BASE_URL must be http or https, got %q", u.Scheme)
	}
	if c.APITimeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if c.AdminPageSize < 1 {
		return errors.New("ADMIN_PAGE_SIZE must be at least 1")
	}
	return nil
}

func defaultStorageDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(dir, "storefront", "storage.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(log logrus.FieldLogger, key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("invalid duration, using default")
		return fallback
	}
	return d
}

func getInt(log logrus.FieldLogger, key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("invalid integer, using default")
		return fallback
	}
	return n
}
