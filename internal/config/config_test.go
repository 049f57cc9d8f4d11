package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Stage)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, uint64(8453), cfg.ChainID)
	assert.Equal(t, ProviderSimulated, cfg.ProviderMode)
	assert.Equal(t, RepositoryMemory, cfg.RepositoryMode)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"rpc without url", map[string]string{"WALLET_PROVIDER": "rpc"}},
		{"unknown provider", map[string]string{"WALLET_PROVIDER": "metamask"}},
		{"postgres without url", map[string]string{"REPOSITORY": "postgres"}},
		{"unknown repository", map[string]string{"REPOSITORY": "sqlite"}},
		{"bad chain id", map[string]string{"CHAIN_ID": "base"}},
		{"prod without jwt secret", map[string]string{"STAGE": "prod"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadExplicitSettings(t *testing.T) {
	t.Setenv("STAGE", "prod")
	t.Setenv("API_PORT", "9000")
	t.Setenv("CHAIN_ID", "84532")
	t.Setenv("WALLET_PROVIDER", "rpc")
	t.Setenv("WALLET_RPC_URL", "http://localhost:8545")
	t.Setenv("REPOSITORY", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/quickfund")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, uint64(84532), cfg.ChainID)
	assert.Equal(t, ProviderRPC, cfg.ProviderMode)
	assert.Equal(t, RepositoryPostgres, cfg.RepositoryMode)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSAllowedOrigins)
}
