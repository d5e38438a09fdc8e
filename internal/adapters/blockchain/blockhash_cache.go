package blockchain

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/pool-sniper/internal/services"
)

const BLOCKHASH_CACHE_SERVICE = "cache-blockhash-svc"

const (
	blockhashPollInterval = 400 * time.Millisecond
	blockhashMaxAge       = 2 * time.Second
)

type BlockhashClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

type CachedBlockhash struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
	Slot                 uint64
	UpdatedAt            time.Time
}

// BlockhashCacheService keeps a recent blockhash warm for transaction assembly.
type BlockhashCacheService struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	mu      sync.RWMutex
	current *CachedBlockhash
	client  BlockhashClient
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewBlockhashCache(client BlockhashClient) *BlockhashCacheService {
	svc := &BlockhashCacheService{client: client}
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

func (svc *BlockhashCacheService) ID() string {
	return BLOCKHASH_CACHE_SERVICE
}

func (svc *BlockhashCacheService) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.client = c.Instance(SOLANA_CLIENT_SERVICE).(*SolanaService).RPC()
	return nil
}

func (svc *BlockhashCacheService) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	svc.cancel = cancel
	svc.done = make(chan struct{})

	if _, err := svc.refresh(ctx); err != nil {
		svc.logger.Warn().Err(err).Msg("Failed to fetch initial blockhash, will retry on next tick")
	}
	go svc.poll(ctx)
	return nil
}

func (svc *BlockhashCacheService) Stop() error {
	if svc.cancel != nil {
		svc.cancel()
		<-svc.done
	}
	return nil
}

func (svc *BlockhashCacheService) poll(ctx context.Context) {
	defer close(svc.done)
	ticker := time.NewTicker(blockhashPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.refresh(ctx); err != nil && ctx.Err() == nil {
				svc.logger.Debug().Err(err).Msg("Blockhash refresh failed")
			}
		}
	}
}

func (svc *BlockhashCacheService) refresh(ctx context.Context) (*CachedBlockhash, error) {
	res, err := svc.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, err
	}
	cached := &CachedBlockhash{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
		Slot:                 res.Context.Slot,
		UpdatedAt:            time.Now(),
	}
	svc.mu.Lock()
	svc.current = cached
	svc.mu.Unlock()
	return cached, nil
}

// GetBlockhash serves the cached hash while fresh, otherwise asks the node.
// A stale hash is still returned when the node cannot be reached.
func (svc *BlockhashCacheService) GetBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	svc.mu.RLock()
	cached := svc.current
	svc.mu.RUnlock()

	if cached != nil && time.Since(cached.UpdatedAt) < blockhashMaxAge {
		return cached.Blockhash, cached.LastValidBlockHeight, nil
	}

	fresh, err := svc.refresh(ctx)
	if err != nil {
		if cached != nil {
			return cached.Blockhash, cached.LastValidBlockHeight, nil
		}
		return solana.Hash{}, 0, err
	}
	return fresh.Blockhash, fresh.LastValidBlockHeight, nil
}
