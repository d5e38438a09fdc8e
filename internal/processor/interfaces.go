package processor

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/pool-sniper/internal/domain"
	"github.com/hxuan190/pool-sniper/internal/services/priority"
)

// ChainClient reads chain state. Its errors reach callers unchanged.
type ChainClient interface {
	GetTransaction(ctx context.Context, sig solana.Signature) (*domain.Transaction, error)
	GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	GetTokenBalance(ctx context.Context, account solana.PublicKey) (*domain.TokenAmount, error)
}

type LogSubscriber interface {
	SubscribeLogs(ctx context.Context, addr solana.PublicKey) (domain.LogSubscription, error)
}

type BlockhashSource interface {
	GetBlockhash(ctx context.Context) (solana.Hash, uint64, error)
}

type TransactionSimulator interface {
	Simulate(ctx context.Context, tx *solana.Transaction) (*domain.SimulationResult, error)
}

type FeeEstimator interface {
	GetOptimalFee(ctx context.Context, urgency priority.Urgency, accounts []solana.PublicKey) *priority.PriorityFeeResult
}
