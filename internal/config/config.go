// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Provider and repository backends selectable via environment.
const (
	ProviderRPC       = "rpc"
	ProviderSimulated = "simulated"

	RepositoryPostgres = "postgres"
	RepositoryMemory   = "memory"
)

// Base mainnet is the default chain.
const defaultChainID = 8453

// Config holds the environment-driven settings for the API server.
type Config struct {
	Stage   string
	Port    string
	ChainID uint64

	// ProviderMode selects the wallet backend; the simulated provider is
	// only ever used when explicitly configured.
	ProviderMode string
	WalletRPCURL string

	RepositoryMode string
	DatabaseURL    string

	NameServiceURL string
	JWTSecret      string

	CORSAllowedOrigins []string
}

// Load reads configuration from the environment, applying defaults for
// optional values and failing on missing required ones.
func Load() (*Config, error) {
	cfg := &Config{
		Stage:          getEnv("STAGE", "dev"),
		Port:           getEnv("API_PORT", "8000"),
		ProviderMode:   getEnv("WALLET_PROVIDER", ProviderSimulated),
		WalletRPCURL:   os.Getenv("WALLET_RPC_URL"),
		RepositoryMode: getEnv("REPOSITORY", RepositoryMemory),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		NameServiceURL: getEnv("NAME_SERVICE_URL", "https://api.basenames.example"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
	}

	cfg.ChainID = defaultChainID
	if raw := os.Getenv("CHAIN_ID"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAIN_ID %q: %w", raw, err)
		}
		cfg.ChainID = id
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, strings.TrimSpace(origin))
		}
	}

	switch cfg.ProviderMode {
	case ProviderSimulated:
	case ProviderRPC:
		if cfg.WalletRPCURL == "" {
			return nil, fmt.Errorf("WALLET_RPC_URL is required when WALLET_PROVIDER=rpc")
		}
	default:
		return nil, fmt.Errorf("unknown WALLET_PROVIDER %q", cfg.ProviderMode)
	}

	switch cfg.RepositoryMode {
	case RepositoryMemory:
	case RepositoryPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when REPOSITORY=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown REPOSITORY %q", cfg.RepositoryMode)
	}

	if cfg.JWTSecret == "" {
		if cfg.Stage == "prod" {
			return nil, fmt.Errorf("JWT_SECRET is required in prod")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in the prod stage.
func (c *Config) IsProduction() bool {
	return c.Stage == "prod"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
