package cache

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewCacheHelper(client, "test", logger), mr
}

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	want := payload{Name: "midterm", Score: 42}
	require.NoError(t, helper.Set(ctx, want, time.Minute, "exam", "1"))

	var got payload
	require.NoError(t, helper.Get(ctx, &got, "exam", "1"))
	assert.Equal(t, want, got)
}

func TestCacheHelper_GetMissing(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got payload
	err := helper.Get(context.Background(), &got, "does-not-exist")
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.Set(ctx, payload{Name: "x"}, time.Minute, "exam", "2"))
	require.NoError(t, helper.Delete(ctx, "exam", "2"))

	var got payload
	assert.ErrorIs(t, helper.Get(ctx, &got, "exam", "2"), ErrCacheNotFound)
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.Set(ctx, payload{Name: "a"}, time.Minute, "exam", "1", "sessions"))
	require.NoError(t, helper.Set(ctx, payload{Name: "b"}, time.Minute, "exam", "1", "results"))
	require.NoError(t, helper.Set(ctx, payload{Name: "c"}, time.Minute, "exam", "2", "sessions"))

	require.NoError(t, helper.InvalidatePattern(ctx, "exam:1:*"))

	var got payload
	assert.ErrorIs(t, helper.Get(ctx, &got, "exam", "1", "sessions"), ErrCacheNotFound)
	assert.ErrorIs(t, helper.Get(ctx, &got, "exam", "1", "results"), ErrCacheNotFound)
	assert.NoError(t, helper.Get(ctx, &got, "exam", "2", "sessions"))
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return payload{Name: "fresh", Score: 7}, nil
	}

	var got payload
	require.NoError(t, helper.CacheOrExecute(ctx, &got, time.Minute, fetch, "exam", "3"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fresh", got.Name)

	// Second call should hit the cache.
	var cached payload
	require.NoError(t, helper.CacheOrExecute(ctx, &cached, time.Minute, fetch, "exam", "3"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, got, cached)
}

func TestCacheHelper_CacheOrExecutePropagatesError(t *testing.T) {
	helper, _ := newTestHelper(t)

	wantErr := errors.New("db down")
	var got payload
	err := helper.CacheOrExecute(context.Background(), &got, time.Minute, func() (interface{}, error) {
		return nil, wantErr
	}, "exam", "4")
	assert.ErrorIs(t, err, wantErr)
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	helper := NewCacheHelper(nil, "test", logger)
	ctx := context.Background()

	var got payload
	assert.ErrorIs(t, helper.Get(ctx, &got, "k"), ErrCacheNotAvailable)
	assert.ErrorIs(t, helper.Set(ctx, payload{}, time.Minute, "k"), ErrCacheNotAvailable)
	assert.ErrorIs(t, helper.HealthCheck(ctx), ErrCacheNotAvailable)

	// CacheOrExecute still serves the value from fn.
	err := helper.CacheOrExecute(ctx, &got, time.Minute, func() (interface{}, error) {
		return payload{Name: "direct"}, nil
	}, "k")
	require.NoError(t, err)
	assert.Equal(t, "direct", got.Name)
}

func TestCacheManager_Invalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	manager := NewCacheManager(client, logger)
	ctx := context.Background()

	require.NoError(t, manager.Session.Set(ctx, payload{Name: "s"}, time.Minute, "10"))
	require.NoError(t, manager.Session.Set(ctx, payload{Name: "l"}, time.Minute, "exam", "5", "list"))

	manager.InvalidateSession(ctx, 10, 5)

	var got payload
	assert.ErrorIs(t, manager.Session.Get(ctx, &got, "10"), ErrCacheNotFound)
	assert.ErrorIs(t, manager.Session.Get(ctx, &got, "exam", "5", "list"), ErrCacheNotFound)
}
