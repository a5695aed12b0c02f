package mdf

import "sync"

// ShardedMap is a concurrent map of K to V, sharded across a small number
// of independently-locked buckets. Mirrors mdf::ConcurrentMap from the
// original source, generalized with Go generics instead of C++ templates.
//
// Default shard count is 11 (a small prime, matching the original's
// default), configurable via NewShardedMap.
type ShardedMap[K comparable, V any] struct {
	shards []*mapShard[K, V]
	hash   func(K) uint64
}

type mapShard[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewShardedMap constructs a ShardedMap with shardCount shards (defaulting
// to 11 when shardCount <= 0) and the given key-hash function.
func NewShardedMap[K comparable, V any](shardCount int, hash func(K) uint64) *ShardedMap[K, V] {
	if shardCount <= 0 {
		shardCount = 11
	}
	m := &ShardedMap[K, V]{
		shards: make([]*mapShard[K, V], shardCount),
		hash:   hash,
	}
	for i := range m.shards {
		m.shards[i] = &mapShard[K, V]{data: make(map[K]V)}
	}
	return m
}

func (m *ShardedMap[K, V]) shardFor(k K) *mapShard[K, V] {
	return m.shards[m.hash(k)%uint64(len(m.shards))]
}

// Get returns the value for k and whether it was present, under the
// shard's read lock.
func (m *ShardedMap[K, V]) Get(k K) (V, bool) {
	s := m.shardFor(k)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[k]
	return v, ok
}

// Insert stores v under k only if k is not already present. It always
// returns the value now stored for k (the existing one on a lost race, the
// new one otherwise) and whether this call performed the insertion.
func (m *ShardedMap[K, V]) Insert(k K, v V) (V, bool) {
	s := m.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.data[k]; ok {
		return existing, false
	}
	s.data[k] = v
	return v, true
}

// Remove deletes k, if present.
func (m *ShardedMap[K, V]) Remove(k K) {
	s := m.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, k)
}

// Size acquires every shard's write lock in turn and sums their sizes. Like
// the original, this never deadlocks because shards are always locked in
// the same fixed index order and no other operation holds more than one
// shard's lock at a time.
func (m *ShardedMap[K, V]) Size() int {
	total := 0
	for _, s := range m.shards {
		s.mu.Lock()
		total += len(s.data)
		s.mu.Unlock()
	}
	return total
}

// nodeIDHash is the hash function used for the per-instance state map,
// keyed by NodeId. NodeId is already a dense small integer, so the
// identity function is the cheapest valid hash.
func nodeIDHash(id NodeId) uint64 {
	return uint64(id)
}
