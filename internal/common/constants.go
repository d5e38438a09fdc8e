// Package common contains common constants and variables used across services
package common

import "github.com/gagliardetto/solana-go"

var (
	// RaydiumAmmV4ProgramID owns the liquidity pools we watch and swap against.
	RaydiumAmmV4ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	// OpenBookProgramID is the order-book program Raydium v4 pools are paired with.
	OpenBookProgramID = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")

	TokenProgramID  = solana.TokenProgramID
	ATAProgramID    = solana.SPLAssociatedTokenAccountProgramID
	SystemProgramID = solana.SystemProgramID
	WSOLMint        = solana.SolMint
)

// Order-book accounts are framed by these literal markers.
var (
	AccountHeadPadding = []byte("serum")
	AccountTailPadding = []byte("padding")
)

const (
	AmmAuthoritySeed = "amm authority"

	// BpsDenominator is 100% in basis points.
	BpsDenominator uint64 = 10_000

	// Raydium v4 trade fee, 0.25%.
	DefaultFeeNumerator   uint64 = 25
	DefaultFeeDenominator uint64 = 10_000

	DefaultSlippageBps uint64 = 1_000
)
