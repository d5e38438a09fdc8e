package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sniper "github.com/hxuan190/pool-sniper/internal/common"
)

func TestSniperConfigDefaults(t *testing.T) {
	for _, k := range []string{"WATCH_ADDRESS", "TARGET_MINT", "OWNER_PUBKEY", "BUY_AMOUNT", "SLIPPAGE_BPS",
		"FEE_NUMERATOR", "FEE_DENOMINATOR", "COMPUTE_UNIT_LIMIT", "SIMULATE_ONLY", "SIGNATURE_CACHE_SIZE", "PRIORITY_URGENCY", "BUY_EXACT_OUT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	var c SniperConfig
	require.NoError(t, c.Load())
	assert.Equal(t, sniper.RaydiumAmmV4ProgramID, c.WatchAddress)
	assert.True(t, c.TargetMint.IsZero())
	assert.Equal(t, uint64(1000), c.SlippageBps)
	assert.Equal(t, uint64(25), c.FeeNumerator)
	assert.Equal(t, uint64(10000), c.FeeDenominator)
	assert.True(t, c.SimulateOnly)
	assert.False(t, c.BuyExactOut)
	assert.Equal(t, 4096, c.SignatureCacheSize)
}

func TestSniperConfigOverrides(t *testing.T) {
	t.Setenv("TARGET_MINT", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	t.Setenv("BUY_AMOUNT", "50000000")
	t.Setenv("SLIPPAGE_BPS", "250")
	t.Setenv("SIMULATE_ONLY", "false")
	t.Setenv("COMPUTE_UNIT_LIMIT", "300000")
	t.Setenv("BUY_EXACT_OUT", "true")

	var c SniperConfig
	require.NoError(t, c.Load())
	assert.True(t, c.BuyExactOut)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", c.TargetMint.String())
	assert.Equal(t, uint64(50_000_000), c.BuyAmount)
	assert.Equal(t, uint64(250), c.SlippageBps)
	assert.False(t, c.SimulateOnly)
	assert.Equal(t, uint32(300_000), c.ComputeUnitLimit)
}

func TestSniperConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"slippage above 100%", "SLIPPAGE_BPS", "10001"},
		{"fee at 100%", "FEE_NUMERATOR", "10000"},
		{"bad mint", "TARGET_MINT", "not-a-key"},
		{"bad amount", "BUY_AMOUNT", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			var c SniperConfig
			assert.Error(t, c.Load())
		})
	}
}
