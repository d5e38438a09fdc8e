package config

import (
	"fmt"
	"strconv"

	"github.com/andrew-solarstorm/go-packages/common"
	"github.com/gagliardetto/solana-go"

	sniper "github.com/hxuan190/pool-sniper/internal/common"
)

type SniperConfig struct {
	// WatchAddress is the account whose logs announce new pools.
	// Default: the Raydium AMM v4 program.
	WatchAddress solana.PublicKey

	// TargetMint restricts buys to pools holding this mint. Zero buys nothing.
	TargetMint solana.PublicKey

	// BuyAmount is the WSOL input in lamports, or the token output with BuyExactOut.
	BuyAmount   uint64
	BuyExactOut bool

	SlippageBps    uint64
	FeeNumerator   uint64
	FeeDenominator uint64

	// SimulateOnly simulates the prepared buy instead of handing it off.
	// Default: true
	SimulateOnly bool

	// Owner pays for and receives the buy. Zero skips transaction assembly.
	Owner solana.PublicKey

	SignatureCacheSize int
	PriorityUrgency    string
	ComputeUnitLimit   uint32
}

func (c *SniperConfig) Key() string {
	return SNIPER_CONFIG_KEY
}

func (c *SniperConfig) Load() error {
	var err error
	if c.WatchAddress, err = envPublicKey("WATCH_ADDRESS", sniper.RaydiumAmmV4ProgramID); err != nil {
		return err
	}
	if c.TargetMint, err = envPublicKey("TARGET_MINT", solana.PublicKey{}); err != nil {
		return err
	}
	if c.Owner, err = envPublicKey("OWNER_PUBKEY", solana.PublicKey{}); err != nil {
		return err
	}
	if c.BuyAmount, err = envUint("BUY_AMOUNT", 0); err != nil {
		return err
	}
	if c.SlippageBps, err = envUint("SLIPPAGE_BPS", sniper.DefaultSlippageBps); err != nil {
		return err
	}
	if c.FeeNumerator, err = envUint("FEE_NUMERATOR", sniper.DefaultFeeNumerator); err != nil {
		return err
	}
	if c.FeeDenominator, err = envUint("FEE_DENOMINATOR", sniper.DefaultFeeDenominator); err != nil {
		return err
	}
	cuLimit, err := envUint("COMPUTE_UNIT_LIMIT", 0)
	if err != nil {
		return err
	}
	c.ComputeUnitLimit = uint32(min(cuLimit, uint64(^uint32(0))))

	c.SimulateOnly = common.GetEnvOrDefault("SIMULATE_ONLY", "true") == "true"
	c.BuyExactOut = common.GetEnvOrDefault("BUY_EXACT_OUT", "false") == "true"
	c.SignatureCacheSize = common.GetEnvOrDefaultInt("SIGNATURE_CACHE_SIZE", 4096)
	c.PriorityUrgency = common.GetEnvOrDefault("PRIORITY_URGENCY", "medium")
	return c.Validate()
}

func (c *SniperConfig) Validate() error {
	if c.WatchAddress.IsZero() {
		return fmt.Errorf("invalid sniper config: empty watch address")
	}
	if c.SlippageBps > sniper.BpsDenominator {
		return fmt.Errorf("invalid sniper config: %w", sniper.ErrInvalidSlippage)
	}
	if c.FeeDenominator == 0 || c.FeeNumerator >= c.FeeDenominator {
		return fmt.Errorf("invalid sniper config: %w", sniper.ErrInvalidFee)
	}
	if c.SignatureCacheSize <= 0 {
		return fmt.Errorf("invalid sniper config: signature cache size %d", c.SignatureCacheSize)
	}
	return nil
}

func envPublicKey(key string, def solana.PublicKey) (solana.PublicKey, error) {
	v := common.GetEnvOrDefault(key, "")
	if v == "" {
		return def, nil
	}
	pk, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return pk, nil
}

func envUint(key string, def uint64) (uint64, error) {
	v := common.GetEnvOrDefault(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
