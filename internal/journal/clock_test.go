package journal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClock_MonotonicSequence tests Next returns strictly increasing values.
func TestClock_MonotonicSequence(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(3), c.Next())
	assert.Equal(t, int64(3), c.Current())
}

// TestClock_ResumeAt tests NewClockAt resumes from a prior position.
func TestClock_ResumeAt(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(41), c.Current())
	assert.Equal(t, int64(42), c.Next())
}

// TestClock_ConcurrentNext tests Next never hands out duplicates.
func TestClock_ConcurrentNext(t *testing.T) {
	c := NewClock()

	const goroutines = 8
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				seq := c.Next()
				mu.Lock()
				seen[seq] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, goroutines*perGoroutine)
	assert.Equal(t, int64(goroutines*perGoroutine), c.Current())
}

// TestFixedGenerator_ReturnsInOrder tests predetermined IDs come out in order.
func TestFixedGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedGenerator("op-1", "op-2")
	assert.Equal(t, "op-1", gen.Generate())
	assert.Equal(t, "op-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

// TestUUIDv7Generator_UniqueIDs tests generated IDs are unique and non-empty.
func TestUUIDv7Generator_UniqueIDs(t *testing.T) {
	gen := UUIDv7Generator{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		require.Len(t, id, 36)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
