package domain

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

type AccountFlags uint64

const (
	FlagInitialized AccountFlags = 1 << iota
	FlagMarket
	FlagOpenOrders
	FlagRequestQueue
	FlagEventQueue
	FlagBids
	FlagAsks
	FlagDisabled
	FlagClosed
	FlagPermissioned
	FlagCrankAuthorityRequired
)

const (
	// FlagsRequiredMarket must be present on every market account.
	FlagsRequiredMarket = FlagInitialized | FlagMarket
	// FlagsOptionalMarket may be combined with the required market flags.
	FlagsOptionalMarket = FlagPermissioned | FlagCrankAuthorityRequired | FlagDisabled
)

var accountFlagNames = []struct {
	flag AccountFlags
	name string
}{
	{FlagInitialized, "Initialized"},
	{FlagMarket, "Market"},
	{FlagOpenOrders, "OpenOrders"},
	{FlagRequestQueue, "RequestQueue"},
	{FlagEventQueue, "EventQueue"},
	{FlagBids, "Bids"},
	{FlagAsks, "Asks"},
	{FlagDisabled, "Disabled"},
	{FlagClosed, "Closed"},
	{FlagPermissioned, "Permissioned"},
	{FlagCrankAuthorityRequired, "CrankAuthorityRequired"},
}

func (f AccountFlags) Has(flag AccountFlags) bool {
	return f&flag == flag
}

// ValidMarket reports whether f is {Initialized, Market} plus any subset of
// {Permissioned, CrankAuthorityRequired, Disabled}, and nothing else.
func (f AccountFlags) ValidMarket() bool {
	if !f.Has(FlagsRequiredMarket) {
		return false
	}
	return f&^(FlagsRequiredMarket|FlagsOptionalMarket) == 0
}

func (f AccountFlags) Names() []string {
	names := make([]string, 0, len(accountFlagNames))
	for _, n := range accountFlagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (f AccountFlags) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "|")
}

// MarketState is the OpenBook market record (V1 shape).
type MarketState struct {
	AccountFlags           AccountFlags     `json:"account_flags"`
	OwnAddress             solana.PublicKey `json:"own_address"`
	VaultSignerNonce       uint64           `json:"vault_signer_nonce"`
	CoinMint               solana.PublicKey `json:"coin_mint"`
	PcMint                 solana.PublicKey `json:"pc_mint"`
	CoinVault              solana.PublicKey `json:"coin_vault"`
	CoinDepositsTotal      uint64           `json:"coin_deposits_total"`
	CoinFeesAccrued        uint64           `json:"coin_fees_accrued"`
	PcVault                solana.PublicKey `json:"pc_vault"`
	PcDepositsTotal        uint64           `json:"pc_deposits_total"`
	PcFeesAccrued          uint64           `json:"pc_fees_accrued"`
	PcDustThreshold        uint64           `json:"pc_dust_threshold"`
	RequestQueue           solana.PublicKey `json:"request_queue"`
	EventQueue             solana.PublicKey `json:"event_queue"`
	Bids                   solana.PublicKey `json:"bids"`
	Asks                   solana.PublicKey `json:"asks"`
	CoinLotSize            uint64           `json:"coin_lot_size"`
	PcLotSize              uint64           `json:"pc_lot_size"`
	FeeRateBps             uint64           `json:"fee_rate_bps"`
	ReferrerRebatesAccrued uint64           `json:"referrer_rebates_accrued"`
}

// MarketStateV2 is the permissioned market record.
type MarketStateV2 struct {
	Inner                  MarketState      `json:"inner"`
	OpenOrdersAuthority    solana.PublicKey `json:"open_orders_authority"`
	PruneAuthority         solana.PublicKey `json:"prune_authority"`
	ConsumeEventsAuthority solana.PublicKey `json:"consume_events_authority"`
}
