package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
)

// AmmKeys is the account set of a Raydium v4 pool, taken from its initialize2 instruction.
type AmmKeys struct {
	AmmPool       solana.PublicKey `json:"amm_pool"`
	CoinMint      solana.PublicKey `json:"coin_mint"`
	PcMint        solana.PublicKey `json:"pc_mint"`
	Authority     solana.PublicKey `json:"authority"`
	TargetOrders  solana.PublicKey `json:"target_orders"`
	CoinVault     solana.PublicKey `json:"coin_vault"`
	PcVault       solana.PublicKey `json:"pc_vault"`
	LpMint        solana.PublicKey `json:"lp_mint"`
	OpenOrders    solana.PublicKey `json:"open_orders"`
	MarketProgram solana.PublicKey `json:"market_program"`
	Market        solana.PublicKey `json:"market"`
	Nonce         uint8            `json:"nonce"`
}

// HasMint reports whether mint is either side of the pool.
func (k *AmmKeys) HasMint(mint solana.PublicKey) bool {
	return k.CoinMint.Equals(mint) || k.PcMint.Equals(mint)
}

// MarketKeys are the order-book accounts a swap instruction needs.
type MarketKeys struct {
	EventQueue  solana.PublicKey `json:"event_queue"`
	Bids        solana.PublicKey `json:"bids"`
	Asks        solana.PublicKey `json:"asks"`
	CoinVault   solana.PublicKey `json:"coin_vault"`
	PcVault     solana.PublicKey `json:"pc_vault"`
	VaultSigner solana.PublicKey `json:"vault_signer"`
}

// Pool is a detected pool together with the vault balances seen at creation.
type Pool struct {
	Amm                AmmKeys          `json:"amm"`
	InitialCoinBalance uint64           `json:"initial_coin_balance"`
	InitialPcBalance   uint64           `json:"initial_pc_balance"`
	CreationSignature  solana.Signature `json:"creation_signature"`
	DetectedAt         time.Time        `json:"detected_at"`
}

func (p *Pool) Address() solana.PublicKey {
	return p.Amm.AmmPool
}

// TokenAmount is an SPL token balance as reported by the RPC node.
type TokenAmount struct {
	Amount         string `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	UiAmountString string `json:"ui_amount_string"`
}

// Raw parses the integer amount, ignoring decimals.
func (t *TokenAmount) Raw() (uint64, error) {
	n, err := strconv.ParseUint(t.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token amount %q: %w", t.Amount, err)
	}
	return n, nil
}
