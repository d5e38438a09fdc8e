package domain

import "strings"

// SwapDirection names which vault receives the input.
type SwapDirection uint8

const (
	// Coin2PC swaps coin for pc; the coin vault is the input reserve.
	Coin2PC SwapDirection = iota
	// PC2Coin swaps pc for coin; the pc vault is the input reserve.
	PC2Coin
)

func (d SwapDirection) String() string {
	switch d {
	case Coin2PC:
		return "coin2pc"
	case PC2Coin:
		return "pc2coin"
	default:
		return "UNKNOWN"
	}
}

func ParseSwapDirection(s string) (SwapDirection, bool) {
	switch strings.ToLower(s) {
	case "coin2pc":
		return Coin2PC, true
	case "pc2coin":
		return PC2Coin, true
	}
	return 0, false
}

// SwapQuote is a fully resolved constant-product quote.
type SwapQuote struct {
	Direction     SwapDirection `json:"direction"`
	AmountIsInput bool          `json:"amount_is_input"`
	AmountIn      uint64        `json:"amount_in"`
	AmountOut     uint64        `json:"amount_out"`
	Fee           uint64        `json:"fee"`
	// OtherAmountThreshold is the minimum out for exact-in quotes and the maximum in for exact-out quotes.
	OtherAmountThreshold uint64 `json:"other_amount_threshold"`
	SlippageBps          uint64 `json:"slippage_bps"`
	PriceImpactBps       uint64 `json:"price_impact_bps"`
}
