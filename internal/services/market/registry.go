package market

import (
	"sort"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/pool-sniper/internal/domain"
)

type poolEntry struct {
	pool  *domain.Pool
	swaps [3]atomic.Uint64
}

// Registry owns every discovered pool and the live log subscription of each.
type Registry struct {
	pools *shardedMap[*poolEntry]
	subs  *shardedMap[domain.LogSubscription]
}

func NewRegistry() *Registry {
	return &Registry{
		pools: newShardedMap[*poolEntry](),
		subs:  newShardedMap[domain.LogSubscription](),
	}
}

// AddPool registers pool unless its address is already known.
func (r *Registry) AddPool(pool *domain.Pool) bool {
	if pool == nil {
		return false
	}
	return r.pools.SetIfAbsent(pool.Address(), &poolEntry{pool: pool})
}

func (r *Registry) Pool(addr solana.PublicKey) (*domain.Pool, bool) {
	e, ok := r.pools.Get(addr)
	if !ok {
		return nil, false
	}
	return e.pool, true
}

// Pools returns every registered pool, newest first.
func (r *Registry) Pools() []*domain.Pool {
	entries := r.pools.Values()
	out := make([]*domain.Pool, len(entries))
	for i, e := range entries {
		out[i] = e.pool
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

func (r *Registry) Len() int {
	return r.pools.Len()
}

// RecordSwap counts a swap seen on a registered pool.
func (r *Registry) RecordSwap(addr solana.PublicKey, kind domain.SwapKind) bool {
	e, ok := r.pools.Get(addr)
	if !ok || int(kind) >= len(e.swaps) {
		return false
	}
	e.swaps[kind].Add(1)
	return true
}

// SwapCounts returns the swap counters of a pool keyed by kind name.
func (r *Registry) SwapCounts(addr solana.PublicKey) map[string]uint64 {
	e, ok := r.pools.Get(addr)
	if !ok {
		return nil
	}
	counts := make(map[string]uint64, len(e.swaps))
	for i := range e.swaps {
		counts[domain.SwapKind(i).String()] = e.swaps[i].Load()
	}
	return counts
}

// AttachSubscription stores sub for addr unless one is already live.
func (r *Registry) AttachSubscription(addr solana.PublicKey, sub domain.LogSubscription) bool {
	return r.subs.SetIfAbsent(addr, sub)
}

// DetachSubscription removes and returns the subscription of addr; the caller unsubscribes it.
func (r *Registry) DetachSubscription(addr solana.PublicKey) (domain.LogSubscription, bool) {
	return r.subs.Delete(addr)
}

func (r *Registry) HasSubscription(addr solana.PublicKey) bool {
	_, ok := r.subs.Get(addr)
	return ok
}

// DrainSubscriptions removes every subscription and returns them.
func (r *Registry) DrainSubscriptions() []domain.LogSubscription {
	return r.subs.Drain()
}

func (r *Registry) SubscriptionCount() int {
	return r.subs.Len()
}
