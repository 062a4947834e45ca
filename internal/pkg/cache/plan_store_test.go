package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
)

type countingStore struct {
	*billing.MemoryStore
	reads int
}

func (s *countingStore) PlanFor(ctx context.Context, userID uint) (string, error) {
	s.reads++
	return s.MemoryStore.PlanFor(ctx, userID)
}

func TestPlanStore(t *testing.T) {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })

	inner := &countingStore{MemoryStore: billing.NewMemoryStore()}
	s := NewPlanStore(inner, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.SetPlan(ctx, 1, "business"))
	plan, err := s.PlanFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "business", plan)
	plan, _ = s.PlanFor(ctx, 1)
	assert.Equal(t, "business", plan)
	assert.Equal(t, 1, inner.reads, "second read is served from cache")

	require.NoError(t, s.SetPlan(ctx, 1, "enterprise"))
	assert.False(t, mr.Exists(planKey(1)))
	plan, _ = s.PlanFor(ctx, 1)
	assert.Equal(t, "enterprise", plan)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(planKey(1)))
}

func TestPlanStore_CacheDown(t *testing.T) {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { SetClient(nil) })
	mr.Close()

	inner := &countingStore{MemoryStore: billing.NewMemoryStore()}
	s := NewPlanStore(inner, time.Minute)
	require.NoError(t, s.SetPlan(context.Background(), 2, "pro"))
	plan, err := s.PlanFor(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "pro", plan)
}
