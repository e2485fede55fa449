package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// PublicBaseURL is the externally reachable URL of this service, used to
	// build action links and blink URLs (e.g., https://floorlink.example.com).
	PublicBaseURL string

	// Solana configuration
	SolanaRPCURL string

	// Marketplace data service configuration
	MarketplaceAPIURL string
	MarketplaceAPIKey string // optional
	ListingCacheTTL   time.Duration

	// BidEscrowAddress is the marketplace account that escrows bid funds.
	BidEscrowAddress string

	// RequestTimeout bounds upstream calls made while serving one action.
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.PublicBaseURL = getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	cfg.MarketplaceAPIURL = os.Getenv("MARKETPLACE_API_URL")
	if cfg.MarketplaceAPIURL == "" {
		errs = append(errs, fmt.Errorf("MARKETPLACE_API_URL is required"))
	}
	cfg.MarketplaceAPIKey = os.Getenv("MARKETPLACE_API_KEY")

	cfg.BidEscrowAddress = os.Getenv("BID_ESCROW_ADDRESS")
	if cfg.BidEscrowAddress == "" {
		errs = append(errs, fmt.Errorf("BID_ESCROW_ADDRESS is required"))
	}

	cacheTTL, err := parseDuration("LISTING_CACHE_TTL", "5s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ListingCacheTTL = cacheTTL
	}

	requestTimeout, err := parseDuration("REQUEST_TIMEOUT", "10s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.RequestTimeout = requestTimeout
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}
	if c.MarketplaceAPIURL == "" {
		errs = append(errs, fmt.Errorf("MarketplaceAPIURL is required"))
	}
	if c.BidEscrowAddress == "" {
		errs = append(errs, fmt.Errorf("BidEscrowAddress is required"))
	}
	if c.ListingCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("ListingCacheTTL cannot be negative"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("RequestTimeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %v", errs)
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable with a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
