package domain

import (
	"github.com/gagliardetto/solana-go"
)

// SwapKind classifies a swap log line on a watched pool.
type SwapKind uint8

const (
	SwapKindSwap SwapKind = iota
	SwapKindSwap2
	SwapKindMultiSwap
)

func (k SwapKind) String() string {
	switch k {
	case SwapKindSwap:
		return "swap"
	case SwapKindSwap2:
		return "swap2"
	case SwapKindMultiSwap:
		return "multiswap"
	default:
		return "UNKNOWN"
	}
}

type SimulationResult struct {
	Success              bool     `json:"success"`
	Error                string   `json:"error,omitempty"`
	Logs                 []string `json:"logs,omitempty"`
	ComputeUnitsConsumed uint64   `json:"compute_units_consumed"`
	InsufficientFunds    bool     `json:"insufficient_funds"`
	SlippageExceeded     bool     `json:"slippage_exceeded"`
}

// BuyPlan is everything prepared for a buy; signing and sending happen elsewhere.
type BuyPlan struct {
	Pool        *Pool                      `json:"pool"`
	MarketKeys  *MarketKeys                `json:"market_keys"`
	InputMint   solana.PublicKey           `json:"input_mint"`
	OutputMint  solana.PublicKey           `json:"output_mint"`
	Quote       *SwapQuote                 `json:"quote"`
	Instruction *solana.GenericInstruction `json:"-"`
	// Transaction is the unsigned transaction, base64, when an owner is configured.
	Transaction string            `json:"transaction,omitempty"`
	Simulation  *SimulationResult `json:"simulation,omitempty"`
}
