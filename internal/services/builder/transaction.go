package builder

import (
	"errors"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

const (
	DefaultComputeUnitLimit uint32 = 200_000
	MaxComputeUnitLimit     uint32 = 1_400_000
)

var ErrNoPayer = errors.New("transaction payer is required")

type TransactionOptions struct {
	Payer           solana.PublicKey
	RecentBlockhash solana.Hash
	// Zero leaves the cluster default in place.
	ComputeUnitLimit uint32
	// MicroLamportsPerCU is the priority fee; zero adds no price instruction.
	MicroLamportsPerCU uint64
}

// BuildSwapTransaction prepends compute budget instructions and returns an unsigned
// transaction carrying zeroed placeholder signatures for every required signer.
func BuildSwapTransaction(instructions []solana.Instruction, opts TransactionOptions) (*solana.Transaction, error) {
	if opts.Payer.IsZero() {
		return nil, ErrNoPayer
	}

	ixs := make([]solana.Instruction, 0, len(instructions)+2)
	if opts.ComputeUnitLimit > 0 {
		limit := opts.ComputeUnitLimit
		if limit > MaxComputeUnitLimit {
			limit = MaxComputeUnitLimit
		}
		ixs = append(ixs, computebudget.NewSetComputeUnitLimitInstruction(limit).Build())
	}
	if opts.MicroLamportsPerCU > 0 {
		ixs = append(ixs, computebudget.NewSetComputeUnitPriceInstruction(opts.MicroLamportsPerCU).Build())
	}
	ixs = append(ixs, instructions...)

	tx, err := solana.NewTransaction(ixs, opts.RecentBlockhash, solana.TransactionPayer(opts.Payer))
	if err != nil {
		return nil, err
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	return tx, nil
}
