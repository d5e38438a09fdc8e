package market

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

const numShards = 16

// shardedMap spreads address-keyed values over shards to reduce lock contention.
type shardedMap[V any] struct {
	shards [numShards]shard[V]
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[solana.PublicKey]V
}

func newShardedMap[V any]() *shardedMap[V] {
	m := &shardedMap[V]{}
	for i := 0; i < numShards; i++ {
		m.shards[i].items = make(map[solana.PublicKey]V)
	}
	return m
}

func (m *shardedMap[V]) shardFor(key solana.PublicKey) *shard[V] {
	return &m.shards[key[0]%numShards]
}

func (m *shardedMap[V]) Get(key solana.PublicKey) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// SetIfAbsent stores v unless key is present and reports whether it stored.
func (m *shardedMap[V]) SetIfAbsent(key solana.PublicKey, v V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = v
	return true
}

// Delete removes key and returns the value it held.
func (m *shardedMap[V]) Delete(key solana.PublicKey) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	v, ok := s.items[key]
	delete(s.items, key)
	s.mu.Unlock()
	return v, ok
}

func (m *shardedMap[V]) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].items)
		m.shards[i].mu.RUnlock()
	}
	return total
}

// Values snapshots every value, one shard lock at a time.
func (m *shardedMap[V]) Values() []V {
	result := make([]V, 0, m.Len())
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for _, v := range m.shards[i].items {
			result = append(result, v)
		}
		m.shards[i].mu.RUnlock()
	}
	return result
}

// Drain empties every shard and returns what it held.
func (m *shardedMap[V]) Drain() []V {
	var result []V
	for i := 0; i < numShards; i++ {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			result = append(result, v)
			delete(s.items, k)
		}
		s.mu.Unlock()
	}
	return result
}
