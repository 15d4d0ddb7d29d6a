// Package config provides centralized configuration loaded from environment
// variables, plus the station policy file (thresholds, exemptions, quiet
// periods). Shared by both cmd/airmon and cmd/airmonctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Channel registry
// --------------------------------------------------------------------------

// ChannelConfig identifies one broadcast channel of the station.
type ChannelConfig struct {
	ID   string
	Name string
	Slug string // URL slug on the metadata site
}

var ChannelRegistry = map[string]ChannelConfig{
	"PRIMARY":   {ID: "PRIMARY", Name: "WVRB HD-1", Slug: "WVRB"},
	"SECONDARY": {ID: "SECONDARY", Name: "WVRB HD-2", Slug: "WVRB-HD2"},
}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Station
	Channel       string // PRIMARY or SECONDARY
	StationSlug   string
	LocalTimezone string

	// Broadcast metadata service (Spinitron-style)
	SpinitronBaseURL   string
	SpinitronToken     string
	SpinitronRateLimit int // requests per minute

	// Catalog/popularity service (Spotify-style)
	CatalogBaseURL      string
	CatalogTokenURL     string
	CatalogClientID     string
	CatalogClientSecret string
	CatalogRateLimit    int // requests per minute

	// Notification sink (Discord-style)
	DiscordBotToken        string
	DiscordAlertChannelID  string
	DiscordStatusChannelID string

	// Compliance monitor
	MonitorInterval time.Duration
	Lookback        time.Duration
	LookbackOffset  time.Duration // legacy historical-window shim, normally zero
	MaxSpinPages    int
	LookupDelay     time.Duration
	SimilarityUpper float64
	SimilarityLower float64
	PolicyFile      string

	// Now-playing tracker
	StatusInterval      time.Duration
	AutomationPersonaID int // persona running the automation deck, 0 disables

	// Database (bindings store); empty disables bindings
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	channel := strings.ToUpper(envOr("AIRMON_CHANNEL", "PRIMARY"))
	reg, ok := ChannelRegistry[channel]
	if !ok {
		return nil, fmt.Errorf("AIRMON_CHANNEL must be PRIMARY or SECONDARY, got %q", channel)
	}

	token := envOr("SPINITRON_API_TOKEN", "")
	if token == "" {
		return nil, fmt.Errorf("SPINITRON_API_TOKEN must be set")
	}

	return &Config{
		Channel:       channel,
		StationSlug:   envOr("AIRMON_STATION_SLUG", reg.Slug),
		LocalTimezone: envOr("AIRMON_LOCAL_TIMEZONE", "America/New_York"),

		SpinitronBaseURL:   envOr("SPINITRON_BASE_URL", "https://spinitron.com"),
		SpinitronToken:     token,
		SpinitronRateLimit: envInt("SPINITRON_RATE_LIMIT_RPM", 120),

		CatalogBaseURL:      envOr("CATALOG_BASE_URL", "https://api.spotify.com/v1"),
		CatalogTokenURL:     envOr("CATALOG_TOKEN_URL", "https://accounts.spotify.com/api/token"),
		CatalogClientID:     envOr("CATALOG_CLIENT_ID", ""),
		CatalogClientSecret: envOr("CATALOG_CLIENT_SECRET", ""),
		CatalogRateLimit:    envInt("CATALOG_RATE_LIMIT_RPM", 180),

		DiscordBotToken:        envOr("DISCORD_BOT_TOKEN", ""),
		DiscordAlertChannelID:  envOr("DISCORD_ALERT_CHANNEL_ID", ""),
		DiscordStatusChannelID: envOr("DISCORD_STATUS_CHANNEL_ID", ""),

		MonitorInterval: time.Duration(envInt("MONITOR_INTERVAL_MINUTES", 60)) * time.Minute,
		Lookback:        time.Duration(envInt("MONITOR_LOOKBACK_MINUTES", 60)) * time.Minute,
		LookbackOffset:  time.Duration(envInt("MONITOR_LOOKBACK_OFFSET_MINUTES", 0)) * time.Minute,
		MaxSpinPages:    envInt("MONITOR_MAX_SPIN_PAGES", 3),
		LookupDelay:     time.Duration(envInt("MONITOR_LOOKUP_DELAY_MS", 100)) * time.Millisecond,
		SimilarityUpper: envFloat("MONITOR_SIMILARITY_UPPER", 0.9),
		SimilarityLower: envFloat("MONITOR_SIMILARITY_LOWER", 0.5),
		PolicyFile:      envOr("AIRMON_POLICY_FILE", ""),

		StatusInterval:      time.Duration(envInt("STATUS_INTERVAL_SECONDS", 60)) * time.Second,
		AutomationPersonaID: envInt("AUTOMATION_PERSONA_ID", 0),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location resolves the station's local timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.LocalTimezone)
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
