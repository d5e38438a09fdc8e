// Package detector finds Raydium v4 pool creations in transactions and log streams.
package detector

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
)

// Account positions in the initialize2 instruction.
const (
	idxAmmPool       = 4
	idxAuthority     = 5
	idxOpenOrders    = 6
	idxLpMint        = 7
	idxCoinMint      = 8
	idxPcMint        = 9
	idxCoinVault     = 10
	idxPcVault       = 11
	idxTargetOrders  = 13
	idxMarketProgram = 15
	idxMarket        = 16

	requiredAccounts = idxMarket + 1
)

const poolCreationMarker = "initialize2"

type Detector struct {
	programID solana.PublicKey
}

// New returns a detector for the given AMM program; zero means Raydium AMM v4.
func New(programID solana.PublicKey) *Detector {
	if programID.IsZero() {
		programID = common.RaydiumAmmV4ProgramID
	}
	return &Detector{programID: programID}
}

func (d *Detector) ProgramID() solana.PublicKey {
	return d.programID
}

// Detect returns the pool keys of the first top-level instruction owned by the AMM program.
func (d *Detector) Detect(tx *domain.Transaction) (*domain.AmmKeys, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: nil transaction", common.ErrMalformedTransaction)
	}

	for i := range tx.Instructions {
		ix := &tx.Instructions[i]
		if !ix.ProgramID.Equals(d.programID) {
			continue
		}
		if len(ix.Accounts) < requiredAccounts {
			return nil, fmt.Errorf("%w: instruction %d has %d accounts, need %d",
				common.ErrMalformedTransaction, i, len(ix.Accounts), requiredAccounts)
		}

		acc := ix.Accounts
		keys := domain.AmmKeys{
			AmmPool:       acc[idxAmmPool],
			Authority:     acc[idxAuthority],
			OpenOrders:    acc[idxOpenOrders],
			LpMint:        acc[idxLpMint],
			CoinMint:      acc[idxCoinMint],
			PcMint:        acc[idxPcMint],
			CoinVault:     acc[idxCoinVault],
			PcVault:       acc[idxPcVault],
			TargetOrders:  acc[idxTargetOrders],
			MarketProgram: acc[idxMarketProgram],
			Market:        acc[idxMarket],
			Nonce:         0,
		}
		return &keys, nil
	}

	return nil, fmt.Errorf("%w: no %s instruction in %s", common.ErrNotFound, d.programID.Short(4), tx.Signature)
}

// IsPoolCreationLog matches the initialize2 log line, case-insensitively.
func IsPoolCreationLog(line string) bool {
	return strings.Contains(strings.ToLower(line), poolCreationMarker)
}

// HasPoolCreationLog reports whether any line announces a pool creation.
func HasPoolCreationLog(logs []string) bool {
	for _, line := range logs {
		if IsPoolCreationLog(line) {
			return true
		}
	}
	return false
}

// ClassifySwapLog reports the swap flavour announced by a log line.
func ClassifySwapLog(line string) (domain.SwapKind, bool) {
	lower := strings.ToLower(strings.TrimSpace(line))
	switch {
	case strings.HasSuffix(lower, "multiswap"):
		return domain.SwapKindMultiSwap, true
	case strings.HasSuffix(lower, "swap2"):
		return domain.SwapKindSwap2, true
	case strings.HasSuffix(lower, "swap"):
		return domain.SwapKindSwap, true
	}
	return 0, false
}
