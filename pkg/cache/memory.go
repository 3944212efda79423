package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

const defaultShards = 32

// MemoryConfig configures the in-process tier.
type MemoryConfig struct {
	Shards int              // number of independently locked shards (default 32)
	Now    func() time.Time // clock, overridable in tests
}

// Memory is the in-process tier. Keys are spread over shards, each guarded by
// its own RWMutex, so writers on different shards never contend.
type Memory struct {
	shards []*memoryShard
	now    func() time.Time
}

type memoryShard struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

type memoryEntry struct {
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// live reports whether now < storedAt + ttl.
func (e memoryEntry) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// NewMemory creates an empty in-process tier.
func NewMemory(cfg MemoryConfig) *Memory {
	n := cfg.Shards
	if n <= 0 {
		n = defaultShards
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	shards := make([]*memoryShard, n)
	for i := range shards {
		shards[i] = &memoryShard{items: make(map[string]memoryEntry)}
	}

	return &Memory{shards: shards, now: now}
}

func (m *Memory) shard(key string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Get returns the value stored under key if it is still live.
// An expired entry is removed on the way out.
func (m *Memory) Get(key string) (any, bool) {
	sh := m.shard(key)
	now := m.now()

	sh.mu.RLock()
	entry, ok := sh.items[key]
	sh.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if entry.live(now) {
		return entry.value, true
	}

	sh.mu.Lock()
	// Another writer may have refreshed the key between the two locks.
	if current, still := sh.items[key]; still && !current.live(now) {
		delete(sh.items, key)
		CacheExpiredTotal.Inc()
	}
	sh.mu.Unlock()

	return nil, false
}

// Set stores value under key for ttl. Non-positive TTLs are ignored.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	now := m.now()
	sh := m.shard(key)

	sh.mu.Lock()
	sh.items[key] = memoryEntry{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
	sh.mu.Unlock()
}

// Delete removes key.
func (m *Memory) Delete(key string) {
	sh := m.shard(key)
	sh.mu.Lock()
	delete(sh.items, key)
	sh.mu.Unlock()
}

// Len returns the number of stored entries, live or not yet collected.
func (m *Memory) Len() int {
	total := 0
	for _, sh := range m.shards {
		sh.mu.RLock()
		total += len(sh.items)
		sh.mu.RUnlock()
	}
	return total
}

// Purge removes every expired entry and returns how many were dropped.
func (m *Memory) Purge() int {
	now := m.now()
	removed := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		for key, entry := range sh.items {
			if !entry.live(now) {
				delete(sh.items, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}
