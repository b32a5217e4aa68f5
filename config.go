package rettiwt

import (
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-rettiwt/logging"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// DefaultPollingInterval is the stream polling interval used when none is given.
const DefaultPollingInterval = 60 * time.Second

// Config holds all configuration for a Client. It is read once by New; rotating the
// credential or proxy means building a new Client.
type Config struct {
	// APIKey is the opaque user credential. Empty means guest access.
	APIKey string

	// Proxy is the proxy URL used by the default transport.
	Proxy string

	// Timeout bounds a single request made by the default transport.
	Timeout time.Duration

	// Logging enables request logging on stderr. Requests are logged at debug level.
	Logging bool

	// StoreLogs additionally writes JSON logs to LogFile.
	StoreLogs bool

	// LogFile is the rotating log file used with StoreLogs.
	// Default: rettiwt.log
	LogFile string

	// UseCache enables caching of entity detail lookups.
	UseCache bool

	// CacheDBURL selects a Redis cache (redis://...). Empty uses an in-process LRU.
	CacheDBURL string

	// CacheTTL is how long cached details stay valid.
	CacheTTL time.Duration

	// DataDBURL is the archive database for streamed tweets (sqlite path or postgres URL).
	DataDBURL string

	// AppPort is the port of the optional HTTP facade.
	AppPort int

	// RateLimit configures per-resource client-side rate limiting in the default transport.
	RateLimit ratelimit.Config

	// Transport overrides the default stealth transport.
	Transport Transport

	// Cache overrides the cache built from CacheDBURL.
	Cache Cache

	// Logger overrides the logger built from Logging/StoreLogs.
	Logger *slog.Logger
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *Config) defaults() {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "rettiwt.log"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
}

// logConfig maps the logging fields onto logging.Config. Request records are debug
// records, so any enabled output runs at debug level.
func (cfg *Config) logConfig() logging.Config {
	lc := logging.Config{Enabled: cfg.Logging, StoreLogs: cfg.StoreLogs, File: cfg.LogFile}
	if cfg.Logging || cfg.StoreLogs {
		lc.Level = slog.LevelDebug
	}
	return lc
}
