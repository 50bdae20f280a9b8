package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// ShardedMap is a concurrent map split across shards by key hash, so
// operations on different keys rarely contend for the same lock.
type ShardedMap[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func NewShardedMap[V any]() *ShardedMap[V] {
	m := &ShardedMap[V]{}
	for i := range m.shards {
		m.shards[i].items = make(map[string]V)
	}
	return m
}

func (m *ShardedMap[V]) shardFor(key string) *shard[V] {
	return &m.shards[shardIndex(key)]
}

// shardIndex maps a key to its shard. Empty keys go to shard 0.
func shardIndex(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}

func (m *ShardedMap[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// GetOrCreate returns the value for key, calling create under the shard
// lock when it is missing. create runs at most once per missing key.
func (m *ShardedMap[V]) GetOrCreate(key string, create func() V) (v V, created bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items[key]; ok {
		return v, false
	}
	v = create()
	s.items[key] = v
	return v, true
}

func (m *ShardedMap[V]) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// DeleteIf removes every entry for which drop returns true and reports
// how many were removed.
func (m *ShardedMap[V]) DeleteIf(drop func(key string, v V) bool) int {
	removed := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			if drop(k, v) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Range calls fn for every entry until fn returns false. Each shard is
// copied first, so fn may call back into the map.
func (m *ShardedMap[V]) Range(fn func(key string, v V) bool) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		keys := make([]string, 0, len(s.items))
		vals := make([]V, 0, len(s.items))
		for k, v := range s.items {
			keys = append(keys, k)
			vals = append(vals, v)
		}
		s.mu.RUnlock()
		for j := range keys {
			if !fn(keys[j], vals[j]) {
				return
			}
		}
	}
}

func (m *ShardedMap[V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}
