package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestGetOrFetch_HitBeforeExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"v"}, nil
	}

	params := Params{"keyword": "running shoes"}
	v, err := GetOrFetch(context.Background(), c, KindSerp, params, SerpTTL, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, v)

	clock.Advance(SerpTTL - time.Second)
	v, err = GetOrFetch(context.Background(), c, KindSerp, params, SerpTTL, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_RefetchAtExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	params := Params{"keyword": "a"}
	v, err := GetOrFetch(context.Background(), c, KindKeywordData, params, time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Exactly at expiry the entry is stale.
	clock.Advance(time.Hour)
	v, err = GetOrFetch(context.Background(), c, KindKeywordData, params, time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrFetch_KeyOrderIndependent(t *testing.T) {
	c := New()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "metrics", nil
	}

	_, err := GetOrFetch(context.Background(), c, KindKeywordData, Params{"keywords": []string{"b", "a"}, "location": 2840}, KeywordDataTTL, fetch)
	require.NoError(t, err)
	_, err = GetOrFetch(context.Background(), c, KindKeywordData, Params{"location": 2840, "keywords": []string{"a", "b"}}, KeywordDataTTL, fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestGetOrFetch_FailuresNotCached(t *testing.T) {
	c := New()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("upstream down")
		}
		return "ok", nil
	}

	_, err := GetOrFetch(context.Background(), c, KindSerp, Params{"keyword": "x"}, SerpTTL, fetch)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	v, err := GetOrFetch(context.Background(), c, KindSerp, Params{"keyword": "x"}, SerpTTL, fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Params
		kindA Kind
		kindB Kind
		same  bool
	}{
		{
			name:  "sorted keyword lists",
			kindA: KindKeywordData, a: Params{"keywords": []string{"b", "a", "c"}},
			kindB: KindKeywordData, b: Params{"keywords": []string{"c", "b", "a"}},
			same: true,
		},
		{
			name:  "case and whitespace folded",
			kindA: KindKeywordData, a: Params{"keywords": []string{" Running Shoes"}},
			kindB: KindKeywordData, b: Params{"keywords": []string{"running shoes"}},
			same: true,
		},
		{
			name:  "different kinds",
			kindA: KindSerp, a: Params{"keyword": "a"},
			kindB: KindRelatedKeywords, b: Params{"keyword": "a"},
			same: false,
		},
		{
			name:  "different location",
			kindA: KindSerp, a: Params{"keyword": "a", "location": 2840},
			kindB: KindSerp, b: Params{"keyword": "a", "location": 2826},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := Key(tt.kindA, tt.a)
			kb := Key(tt.kindB, tt.b)
			if tt.same {
				assert.Equal(t, ka, kb)
			} else {
				assert.NotEqual(t, ka, kb)
			}
		})
	}
}

func TestKey_DoesNotMutateInput(t *testing.T) {
	kws := []string{"b", "a"}
	_ = Key(KindKeywordData, Params{"keywords": kws})
	assert.Equal(t, []string{"b", "a"}, kws)
}

func TestSweep(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("short", 1, time.Minute)
	c.Set("long", 2, time.Hour)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("short")
	assert.False(t, ok)
	v, ok := c.Get("long")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestGet_LazyExpiryWithoutSweep(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("k", "v", time.Minute)
	clock.Advance(time.Minute + time.Nanosecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	// Entry is still resident until a sweep runs.
	assert.Equal(t, 1, c.Len())
}

func TestStartClose(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now), WithSweepInterval(5*time.Millisecond))
	c.Set("k", "v", time.Millisecond)
	clock.Advance(time.Second)

	c.Start(context.Background())
	c.Start(context.Background())

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)

	c.Close()
	c.Close()
}

func TestClose_WithoutStart(t *testing.T) {
	c := New()
	c.Close()
	c.Start(context.Background()) // no-op after close
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = GetOrFetch(context.Background(), c, KindKeywordData, Params{"i": i % 5}, time.Hour,
				func(ctx context.Context) (int, error) { return i, nil })
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, c.Len())
}
