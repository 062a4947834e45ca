package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

// DefaultPlanTTL bounds how long a cached plan may lag behind a webhook.
const DefaultPlanTTL = 5 * time.Minute

// PlanStore caches effective plans in front of another billing.SubscriptionStore.
type PlanStore struct {
	inner billing.SubscriptionStore
	ttl   time.Duration
}

// NewPlanStore wraps inner. A cache outage falls through to inner.
func NewPlanStore(inner billing.SubscriptionStore, ttl time.Duration) *PlanStore {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return &PlanStore{inner: inner, ttl: ttl}
}

func planKey(userID uint) string {
	return fmt.Sprintf("plan:user:%d", userID)
}

func (s *PlanStore) PlanFor(ctx context.Context, userID uint) (string, error) {
	plan, err := Get(planKey(userID))
	if err == nil && plan != "" {
		return plan, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.L().Warn("plan cache read failed", zap.Uint("user_id", userID), zap.Error(err))
	}

	plan, err = s.inner.PlanFor(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := Set(planKey(userID), plan, s.ttl); err != nil {
		logger.L().Warn("plan cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return plan, nil
}

func (s *PlanStore) SetPlan(ctx context.Context, userID uint, plan string) error {
	if err := s.inner.SetPlan(ctx, userID, plan); err != nil {
		return err
	}
	if err := Delete(planKey(userID)); err != nil {
		logger.L().Warn("plan cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return nil
}
