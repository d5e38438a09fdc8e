package market

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/pool-sniper/internal/domain"
)

type fakeSub struct {
	unsubscribed atomic.Int32
}

func (f *fakeSub) Notifications() <-chan domain.LogNotification { return nil }
func (f *fakeSub) Err() error                                     { return nil }
func (f *fakeSub) Unsubscribe()                                   { f.unsubscribed.Add(1) }

func pool(b byte, detected time.Time) *domain.Pool {
	return &domain.Pool{
		Amm:        domain.AmmKeys{AmmPool: solana.PublicKey{b, 1}},
		DetectedAt: detected,
	}
}

func TestRegistryAddPoolIsInsertIfAbsent(t *testing.T) {
	r := NewRegistry()
	first := pool(7, time.Now())
	dup := pool(7, time.Now().Add(time.Second))

	assert.True(t, r.AddPool(first))
	assert.False(t, r.AddPool(dup))
	assert.False(t, r.AddPool(nil))

	got, ok := r.Pool(first.Address())
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Pool(solana.PublicKey{99})
	assert.False(t, ok)
}

func TestRegistryPoolsNewestFirst(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	for i := 0; i < 40; i++ {
		r.AddPool(pool(byte(i), now.Add(time.Duration(i)*time.Second)))
	}

	pools := r.Pools()
	require.Len(t, pools, 40)
	for i := 1; i < len(pools); i++ {
		assert.True(t, !pools[i].DetectedAt.After(pools[i-1].DetectedAt))
	}
}

func TestRegistryConcurrentAdd(t *testing.T) {
	r := NewRegistry()
	p := pool(3, time.Now())

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.AddPool(p) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestRegistrySwapCounts(t *testing.T) {
	r := NewRegistry()
	p := pool(5, time.Now())
	r.AddPool(p)

	assert.True(t, r.RecordSwap(p.Address(), domain.SwapKindSwap))
	assert.True(t, r.RecordSwap(p.Address(), domain.SwapKindSwap))
	assert.True(t, r.RecordSwap(p.Address(), domain.SwapKindMultiSwap))
	assert.False(t, r.RecordSwap(solana.PublicKey{1}, domain.SwapKindSwap))

	assert.Equal(t, map[string]uint64{"swap": 2, "swap2": 0, "multiswap": 1}, r.SwapCounts(p.Address()))
	assert.Nil(t, r.SwapCounts(solana.PublicKey{1}))
}

func TestRegistrySubscriptions(t *testing.T) {
	r := NewRegistry()
	a, b := solana.PublicKey{1}, solana.PublicKey{2}
	subA, subB := &fakeSub{}, &fakeSub{}

	assert.True(t, r.AttachSubscription(a, subA))
	assert.False(t, r.AttachSubscription(a, &fakeSub{}))
	assert.True(t, r.AttachSubscription(b, subB))
	assert.Equal(t, 2, r.SubscriptionCount())
	assert.True(t, r.HasSubscription(a))

	got, ok := r.DetachSubscription(a)
	require.True(t, ok)
	assert.Same(t, subA, got)
	_, ok = r.DetachSubscription(a)
	assert.False(t, ok)

	drained := r.DrainSubscriptions()
	require.Len(t, drained, 1)
	assert.Same(t, subB, drained[0])
	assert.Zero(t, r.SubscriptionCount())
	assert.Empty(t, r.DrainSubscriptions())
}

func TestSignatureCache(t *testing.T) {
	c, err := NewSignatureCache(2)
	require.NoError(t, err)

	s1, s2, s3 := solana.Signature{1}, solana.Signature{2}, solana.Signature{3}
	assert.False(t, c.Seen(s1))
	assert.True(t, c.Seen(s1))
	assert.False(t, c.Seen(s2))
	assert.False(t, c.Seen(s3))
	assert.Equal(t, 2, c.Len())

	// s1 was evicted as least recently used.
	assert.False(t, c.Seen(s1))
}

func TestSignatureCacheDefaultSize(t *testing.T) {
	c, err := NewSignatureCache(0)
	require.NoError(t, err)
	assert.False(t, c.Seen(solana.Signature{9}))
}
