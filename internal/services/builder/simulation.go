package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/pool-sniper/internal/domain"
)

type SimulationClient interface {
	SimulateTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts *rpc.SimulateTransactionOpts) (*rpc.SimulateTransactionResponse, error)
}

// Simulator dry-runs unsigned transactions against the cluster.
type Simulator struct {
	client     SimulationClient
	commitment rpc.CommitmentType
}

func NewSimulator(client SimulationClient, commitment rpc.CommitmentType) *Simulator {
	return &Simulator{client: client, commitment: commitment}
}

// Simulate runs tx without signature verification, against the latest blockhash.
// A transport failure is returned as an error; a failing program is reported in the result.
func (s *Simulator) Simulate(ctx context.Context, tx *solana.Transaction) (*domain.SimulationResult, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}

	result, err := s.client.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		Commitment:             s.commitment,
		ReplaceRecentBlockhash: true,
	})
	if err != nil {
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("simulation returned no result")
	}

	simResult := &domain.SimulationResult{
		Success: result.Value.Err == nil,
		Logs:    result.Value.Logs,
	}
	if result.Value.UnitsConsumed != nil {
		simResult.ComputeUnitsConsumed = *result.Value.UnitsConsumed
	}

	if result.Value.Err != nil {
		simResult.Error = fmt.Sprintf("%v", result.Value.Err)
		haystack := strings.ToLower(simResult.Error + " " + strings.Join(simResult.Logs, " "))
		simResult.InsufficientFunds = strings.Contains(haystack, "insufficient") || strings.Contains(haystack, "not enough")
		// Raydium logs "exceeds desired slippage limit" when min out is not met.
		simResult.SlippageExceeded = strings.Contains(haystack, "slippage")
	}

	return simResult, nil
}

// ComputeUnitsWithBuffer adds 20% to the consumed units, capped at the cluster maximum.
func ComputeUnitsWithBuffer(consumed uint64) uint32 {
	if consumed == 0 {
		return DefaultComputeUnitLimit
	}
	withBuffer := consumed + consumed*20/100
	if withBuffer > uint64(MaxComputeUnitLimit) {
		return MaxComputeUnitLimit
	}
	return uint32(withBuffer)
}
