package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. It is built once at process
// start by Load and passed by parameter into every component; nothing else
// reads environment state.
type Config struct {
	Server     ServerConfig
	Browser    BrowserConfig
	Scraper    ScraperConfig
	Classifier ClassifierConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Cache      CacheConfig
	Webhook    WebhookConfig
	Log        LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the development-only headless browser transport.
type BrowserConfig struct {
	// DevMode enables the headless-browser transport. Recognised from any
	// of MENUGRAB_DEV, DEV_MODE, or APP_ENV=development.
	DevMode bool

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// NavigationTimeout bounds page.Navigate plus the load wait.
	NavigationTimeout time.Duration // default: 30s

	// SettleDelay is the fixed pause after network idle before the page is
	// considered rendered.
	SettleDelay time.Duration // default: 2s

	// BlockedResourceTypes lists resource types to block during navigation.
	// Image downloads stay blocked too: the DOM keeps src attributes, which
	// is all the extractors need. default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// ScraperConfig controls the extraction cascade.
type ScraperConfig struct {
	// DefaultTimeout is the per-request deadline for the whole cascade.
	DefaultTimeout time.Duration // default: 60s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 180s

	// FetchTimeout bounds each individual HTTP fetch inside a transport.
	FetchTimeout time.Duration // default: 15s

	// GoodEnoughItems stops the cascade early once a candidate has found at
	// least this many menu items.
	GoodEnoughItems int // default: 5

	// HostMemoryTTL is how long a winning transport is remembered per host.
	HostMemoryTTL time.Duration // default: 24h
}

// ClassifierConfig controls the dish-name plausibility classifier.
type ClassifierConfig struct {
	// LengthFallback keeps the permissive accept-by-length rule (5–80
	// chars) for strings that match neither patterns nor food vocabulary.
	// Deliberately on by default; turning it off trades recall for noise.
	LengthFallback bool // default: true
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// WebhookConfig controls signed batch-completion notifications.
type WebhookConfig struct {
	// Secret signs outgoing webhook payloads with HMAC-SHA256 when set.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MENUGRAB_HOST", "0.0.0.0"),
			Port: envIntOr("MENUGRAB_PORT", 8080),
			Mode: envOr("MENUGRAB_MODE", "release"),
		},
		Browser: BrowserConfig{
			DevMode:           devModeFromEnv(),
			Headless:          envBoolOr("MENUGRAB_HEADLESS", true),
			NoSandbox:         envBoolOr("MENUGRAB_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("MENUGRAB_BROWSER_BIN"),
			NavigationTimeout: envDurationOr("MENUGRAB_NAV_TIMEOUT", 30*time.Second),
			SettleDelay:       envDurationOr("MENUGRAB_SETTLE_DELAY", 2*time.Second),
			BlockedResourceTypes: envSliceOr("MENUGRAB_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Scraper: ScraperConfig{
			DefaultTimeout:  envDurationOr("MENUGRAB_DEFAULT_TIMEOUT", 60*time.Second),
			MaxTimeout:      envDurationOr("MENUGRAB_MAX_TIMEOUT", 180*time.Second),
			FetchTimeout:    envDurationOr("MENUGRAB_FETCH_TIMEOUT", 15*time.Second),
			GoodEnoughItems: envIntOr("MENUGRAB_GOOD_ENOUGH_ITEMS", 5),
			HostMemoryTTL:   envDurationOr("MENUGRAB_HOST_MEMORY_TTL", 24*time.Hour),
		},
		Classifier: ClassifierConfig{
			LengthFallback: envBoolOr("MENUGRAB_CLASSIFIER_LENGTH_FALLBACK", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MENUGRAB_AUTH_ENABLED", false),
			APIKeys: envSliceOr("MENUGRAB_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MENUGRAB_RATE_RPS", 2.0),
			Burst:             envIntOr("MENUGRAB_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("MENUGRAB_CACHE_MAX_ENTRIES", 500),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("MENUGRAB_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("MENUGRAB_LOG_LEVEL", "info"),
			Format: envOr("MENUGRAB_LOG_FORMAT", "json"),
		},
	}
}

// devModeFromEnv recognises the development flag under the several names the
// deployment environments historically used.
func devModeFromEnv() bool {
	if envBoolOr("MENUGRAB_DEV", false) {
		return true
	}
	if envBoolOr("DEV_MODE", false) {
		return true
	}
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
