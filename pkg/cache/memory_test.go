package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemory_Liveness(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory(MemoryConfig{Shards: 4, Now: clock.Now})

	mem.Set("k", "v", 30*time.Second)

	got, ok := mem.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	clock.Advance(29 * time.Second)
	_, ok = mem.Get("k")
	assert.True(t, ok, "entry must be live before storedAt+ttl")

	clock.Advance(1 * time.Second)
	_, ok = mem.Get("k")
	assert.False(t, ok, "entry must not be returned at storedAt+ttl")
	assert.Equal(t, 0, mem.Len(), "expired entry is removed on lookup")
}

func TestMemory_NonPositiveTTLIgnored(t *testing.T) {
	mem := NewMemory(MemoryConfig{})

	mem.Set("zero", 1, 0)
	mem.Set("negative", 1, -time.Second)

	assert.Equal(t, 0, mem.Len())
}

func TestMemory_OverwriteRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory(MemoryConfig{Now: clock.Now})

	mem.Set("k", "old", 10*time.Second)
	clock.Advance(8 * time.Second)
	mem.Set("k", "new", 10*time.Second)
	clock.Advance(8 * time.Second)

	got, ok := mem.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestMemory_DeleteAndPurge(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory(MemoryConfig{Now: clock.Now})

	mem.Set("a", 1, time.Second)
	mem.Set("b", 2, time.Minute)
	mem.Set("c", 3, time.Minute)
	mem.Delete("c")

	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, mem.Purge())
	assert.Equal(t, 1, mem.Len())

	_, ok := mem.Get("b")
	assert.True(t, ok)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	mem := NewMemory(MemoryConfig{Shards: 8})

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("w%d-k%d", worker, i)
				mem.Set(key, i, time.Minute)
				got, ok := mem.Get(key)
				if !ok || got != i {
					t.Errorf("worker %d lost key %s", worker, key)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 16*200, mem.Len())
}
