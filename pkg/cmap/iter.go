// Package cmap provides a concurrent-safe sharded map.
package cmap

// SetIfAbsent stores value only when key has no entry yet, reporting
// whether it did. This is the compare-and-claim primitive behind
// per-node reservations: exactly one concurrent caller wins.
func (m *Map[K, V]) SetIfAbsent(key K, value V) bool {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.items[key]; ok {
		return false
	}
	shard.items[key] = value
	return true
}

// Range calls fn for every entry until fn returns false. Shards are
// locked one at a time, so entries changing on not-yet-visited shards
// may or may not be seen.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k, v := range shard.items {
			if !fn(k, v) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

// Keys returns the keys present as each shard was visited.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Count())
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Snapshot copies the entries into a plain map, shard by shard.
func (m *Map[K, V]) Snapshot() map[K]V {
	out := make(map[K]V, m.Count())
	m.Range(func(key K, value V) bool {
		out[key] = value
		return true
	})
	return out
}

// ShardCount returns the number of shards.
func (m *Map[K, V]) ShardCount() int {
	return len(m.shards)
}
