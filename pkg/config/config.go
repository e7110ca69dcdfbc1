package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Upstream venues
	TWSE    VenueConfig
	TPEx    VenueConfig
	TAIFEX  VenueConfig
	Yahoo   VenueConfig
	FinMind FinMindConfig

	// Fetching behaviour
	Fetch FetchConfig

	// Enrichment pipeline
	Enrich EnrichConfig

	// Market risk dashboard
	Risk RiskConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// VenueConfig holds the endpoint configuration for one exchange venue.
type VenueConfig struct {
	BaseURL string
}

// FinMindConfig holds FinMind API configuration. The token is optional;
// without it the broker branch dataset is unavailable and falls back to
// simulation.
type FinMindConfig struct {
	BaseURL string
	Token   string
}

// FetchConfig controls request pacing against the upstream venues.
// The delays are an operational courtesy to rate-limited sources, not a
// correctness requirement; tests set them to zero.
type FetchConfig struct {
	Timeout     time.Duration // per-request HTTP timeout
	DateDelay   time.Duration // pause between per-date history requests
	EntityDelay time.Duration // pause between entities in a batch
	RatePerSec  float64       // shared per-venue request budget
	RateBurst   int
}

// EnrichConfig holds the enrichment window parameters and file paths.
type EnrichConfig struct {
	WindowDays     int    // trailing window for 5-day rollups
	WindowBuffer   int    // extra business days fetched to absorb exchange holidays
	VWAPDays       int    // trailing window for the VWAP approximation
	VWAPMinSamples int    // minimum candles before VWAP is usable
	SimulationSeed string // global context seed for deterministic fallback
	BoundsFile     string // metric bounds YAML, empty means built-in defaults
	WatchlistFile  string
	OutputDir      string
}

// RiskConfig holds the market risk dashboard window parameters.
type RiskConfig struct {
	HistoryDays   int // trailing window for institutional history stats
	HistoryBuffer int // extra business days to absorb exchange holidays
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		TWSE: VenueConfig{
			BaseURL: getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
		},
		TPEx: VenueConfig{
			BaseURL: getEnv("TPEX_BASE_URL", "https://www.tpex.org.tw"),
		},
		TAIFEX: VenueConfig{
			BaseURL: getEnv("TAIFEX_BASE_URL", "https://www.taifex.com.tw"),
		},
		Yahoo: VenueConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},
		FinMind: FinMindConfig{
			BaseURL: getEnv("FINMIND_BASE_URL", "https://api.finmindtrade.com"),
			Token:   getEnv("FINMIND_TOKEN", ""),
		},

		Fetch: FetchConfig{
			Timeout:     getEnvAsDuration("FETCH_TIMEOUT", "15s"),
			DateDelay:   getEnvAsDuration("FETCH_DATE_DELAY", "300ms"),
			EntityDelay: getEnvAsDuration("FETCH_ENTITY_DELAY", "200ms"),
			RatePerSec:  getEnvAsFloat("FETCH_RATE_PER_SEC", 2.0),
			RateBurst:   getEnvAsInt("FETCH_RATE_BURST", 1),
		},

		Enrich: EnrichConfig{
			WindowDays:     getEnvAsInt("ENRICH_WINDOW_DAYS", 5),
			WindowBuffer:   getEnvAsInt("ENRICH_WINDOW_BUFFER", 4),
			VWAPDays:       getEnvAsInt("ENRICH_VWAP_DAYS", 20),
			VWAPMinSamples: getEnvAsInt("ENRICH_VWAP_MIN_SAMPLES", 10),
			SimulationSeed: getEnv("SIMULATION_SEED", "42"),
			BoundsFile:     getEnv("BOUNDS_FILE", ""),
			WatchlistFile:  getEnv("WATCHLIST_FILE", "watchlist.json"),
			OutputDir:      getEnv("OUTPUT_DIR", "reports"),
		},

		Risk: RiskConfig{
			HistoryDays:   getEnvAsInt("RISK_HISTORY_DAYS", 20),
			HistoryBuffer: getEnvAsInt("RISK_HISTORY_BUFFER", 15),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Enrich.WindowDays <= 0 {
		return fmt.Errorf("ENRICH_WINDOW_DAYS must be > 0")
	}
	if c.Enrich.WindowBuffer < 0 {
		return fmt.Errorf("ENRICH_WINDOW_BUFFER must be >= 0")
	}
	if c.Enrich.VWAPDays <= 0 {
		return fmt.Errorf("ENRICH_VWAP_DAYS must be > 0")
	}
	if c.Enrich.VWAPMinSamples > c.Enrich.VWAPDays {
		return fmt.Errorf("ENRICH_VWAP_MIN_SAMPLES must not exceed ENRICH_VWAP_DAYS")
	}
	if c.Enrich.SimulationSeed == "" {
		return fmt.Errorf("SIMULATION_SEED must not be empty")
	}
	if c.Fetch.RatePerSec <= 0 {
		return fmt.Errorf("FETCH_RATE_PER_SEC must be > 0")
	}
	if c.Risk.HistoryDays <= 0 {
		return fmt.Errorf("RISK_HISTORY_DAYS must be > 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
