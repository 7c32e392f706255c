package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "RPC_URL", "CHAIN_ID", "ITLX_CONTRACT", "MIN_ITLX_BALANCE", "TOKEN_DECIMALS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, int64(DefaultChainID), cfg.ChainID)
	assert.Equal(t, DefaultMinBalance, cfg.MinBalance)
	assert.Equal(t, DefaultTokenDecimals, cfg.TokenDecimals)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "production")
	t.Setenv("MIN_ITLX_BALANCE", "250")
	t.Setenv("TOKEN_DECIMALS", "6")
	t.Setenv("ITLX_CONTRACT", "0x1111111111111111111111111111111111111111")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "250", cfg.MinBalance)
	assert.Equal(t, 6, cfg.TokenDecimals)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.ITLXContract)
}

func TestValidate(t *testing.T) {
	base := &Config{
		RPCURL:        DefaultRPCURL,
		ITLXContract:  DefaultITLXContract,
		MinBalance:    "100",
		TokenDecimals: 18,
	}
	assert.NoError(t, base.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing rpc url", func(c *Config) { c.RPCURL = "" }},
		{"missing contract", func(c *Config) { c.ITLXContract = "" }},
		{"empty min balance", func(c *Config) { c.MinBalance = "" }},
		{"negative decimals", func(c *Config) { c.TokenDecimals = -1 }},
		{"decimals too large", func(c *Config) { c.TokenDecimals = 37 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetEnvInt64IgnoresGarbage(t *testing.T) {
	t.Setenv("CHAIN_ID", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultChainID), cfg.ChainID)
}
