package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time instead of sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache() (*Cache, *fakeClock) {
	c := New(nil)
	clk := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clk.Now
	return c, clk
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestSetOverwrites(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("old"), time.Minute)
	_ = c.Set(ctx, "k", []byte("new"), time.Minute)
	got, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("new"), got)
}

func TestExpiry(t *testing.T) {
	c, clk := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 5*time.Minute)

	clk.Advance(5 * time.Minute) // exactly at the boundary: still valid
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	clk.Advance(time.Second)
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Idempotent: expired stays absent on repeated reads.
	got, _ = c.Get(ctx, "k")
	assert.Nil(t, got)
}

func TestDefaultTTL(t *testing.T) {
	c, clk := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0) // 0 means the 5 minute default
	clk.Advance(4 * time.Minute)
	got, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("v"), got)

	clk.Advance(2 * time.Minute)
	got, _ = c.Get(ctx, "k")
	assert.Nil(t, got)
}

func TestLazyEvictionDeletesEntry(t *testing.T) {
	c, clk := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	clk.Advance(2 * time.Minute)

	_, _ = c.Get(ctx, "k")
	c.mu.Lock()
	_, stillThere := c.entries["k"]
	c.mu.Unlock()
	assert.False(t, stillThere, "expired entry must be removed on read")
}

func TestDelAbsentIsNoop(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "keep", []byte("v"), time.Minute)
	require.NoError(t, c.Del(ctx, "missing"))

	got, _ := c.Get(ctx, "keep")
	assert.Equal(t, []byte("v"), got, "other keys unaffected")
}

func TestClear(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)
	require.NoError(t, c.Clear(ctx))

	for _, k := range []string{"a", "b"} {
		got, _ := c.Get(ctx, k)
		assert.Nil(t, got)
	}
}

func TestCleanupSweepsOnlyExpired(t *testing.T) {
	c, clk := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("1"), time.Minute)
	_ = c.Set(ctx, "long", []byte("2"), time.Hour)
	clk.Advance(10 * time.Minute)

	removed := c.Cleanup()
	assert.Equal(t, 1, removed)

	got, _ := c.Get(ctx, "long")
	assert.Equal(t, []byte("2"), got)
	got, _ = c.Get(ctx, "short")
	assert.Nil(t, got)
}

func TestSetNXAndExists(t *testing.T) {
	c, clk := newTestCache()
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "k", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = c.SetNX(ctx, "k", []byte("2"), time.Minute)
	assert.False(t, ok, "existing live key is not overwritten")

	exists, _ := c.Exists(ctx, "k")
	assert.True(t, exists)

	clk.Advance(2 * time.Minute)
	ok, _ = c.SetNX(ctx, "k", []byte("3"), time.Minute)
	assert.True(t, ok, "expired key behaves as absent")
}

func TestJanitorStartStop(t *testing.T) {
	c := New(nil)
	_ = c.Set(context.Background(), "k", []byte("v"), time.Nanosecond)

	c.StartJanitor(time.Millisecond)
	c.StartJanitor(time.Millisecond) // second start is a no-op

	assert.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		_, ok := c.entries["k"]
		return !ok
	}, time.Second, 5*time.Millisecond)

	c.StopJanitor()
	c.StopJanitor() // idempotent
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n))
			for j := 0; j < 200; j++ {
				_ = c.Set(ctx, key, []byte{byte(j)}, time.Minute)
				_, _ = c.Get(ctx, key)
				if j%50 == 0 {
					c.Cleanup()
				}
				if j%97 == 0 {
					_ = c.Clear(ctx)
				}
			}
		}(i)
	}
	wg.Wait()
}
