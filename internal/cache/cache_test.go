package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localnerve/portfolio-site/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestFetchCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := testutil.FixedClock()
	c := New(NewMemory(clock.Now))

	backend := payload{Title: "v1"}
	var loads int
	load := func(context.Context) (payload, error) {
		loads++
		return backend, nil
	}

	got, err := Fetch(ctx, c, "settings:public", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Title)

	// Changed out-of-band; still served from cache.
	backend.Title = "v2"
	clock.Advance(59 * time.Second)
	got, err = Fetch(ctx, c, "settings:public", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Title)
	assert.Equal(t, 1, loads)

	// Expired on next read.
	clock.Advance(time.Second)
	got, err = Fetch(ctx, c, "settings:public", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, 2, loads)
}

func TestInvalidatePrefixBypassesCache(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(nil))

	value := "old"
	load := func(context.Context) (string, error) { return value, nil }

	for _, key := range []string{"projects:published:3", "projects:published:10", "writing:items"} {
		_, err := Fetch(ctx, c, key, time.Minute, load)
		require.NoError(t, err)
	}

	value = "new"
	c.InvalidatePrefix(ctx, "projects:")

	got, err := Fetch(ctx, c, "projects:published:3", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	got, err = Fetch(ctx, c, "writing:items", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "old", got)
}

func TestErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(nil))

	_, err := Fetch(ctx, c, "k", time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	got, err := Fetch(ctx, c, "k", time.Minute, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestCallersGetIndependentCopies(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(nil))
	load := func(context.Context) (payload, error) {
		return payload{Tags: []string{"go"}}, nil
	}

	first, err := Fetch(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	first.Tags[0] = "mutated"

	second, err := Fetch(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, second.Tags)
}

func TestConcurrentLoadsCollapse(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(nil))

	var loads atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		loads.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, "writing:categories", time.Minute, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	// Let the goroutines pile up on the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	assert.LessOrEqual(t, loads.Load(), int32(8))
	assert.GreaterOrEqual(t, loads.Load(), int32(1))
}

func TestInvalidationDuringLoadSkipsStore(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(nil)
	c := New(mem)

	_, err := Fetch(ctx, c, "settings:public", time.Minute, func(context.Context) (string, error) {
		c.InvalidatePrefix(ctx, "settings:")
		return "stale", nil
	})
	require.NoError(t, err)
	assert.Zero(t, mem.Len())
}

// pausedSet holds the first Set until release is closed.
type pausedSet struct {
	Backend
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *pausedSet) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.Backend.Set(ctx, key, value, ttl)
}

func TestInvalidationWaitsForStoreInProgress(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(nil)
	backend := &pausedSet{Backend: mem, entered: make(chan struct{}), release: make(chan struct{})}
	c := New(backend)

	var loads atomic.Int32
	load := func(context.Context) (string, error) {
		loads.Add(1)
		return "stale", nil
	}

	fetched := make(chan struct{})
	go func() {
		defer close(fetched)
		_, err := Fetch(ctx, c, "settings:public", time.Minute, load)
		assert.NoError(t, err)
	}()
	<-backend.entered

	invalidated := make(chan struct{})
	go func() {
		defer close(invalidated)
		c.InvalidatePrefix(ctx, "settings:")
	}()
	assert.Never(t, func() bool {
		select {
		case <-invalidated:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(backend.release)
	<-fetched
	<-invalidated
	assert.Zero(t, mem.Len())

	_, err := Fetch(ctx, c, "settings:public", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads.Load())
}

func TestMemoryLazyEviction(t *testing.T) {
	ctx := context.Background()
	clock := testutil.FixedClock()
	mem := NewMemory(clock.Now)

	require.NoError(t, mem.Set(ctx, "a", []byte("1"), time.Second))
	clock.Advance(time.Second)
	assert.Equal(t, 1, mem.Len())

	_, ok, err := mem.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, mem.Len())
}
