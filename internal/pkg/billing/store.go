package billing

import (
	"context"
	"sync"

	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
)

// SubscriptionStore holds the effective plan of each user. The database store
// is used in production; MemoryStore backs tests and local demos.
type SubscriptionStore interface {
	PlanFor(ctx context.Context, userID uint) (string, error)
	SetPlan(ctx context.Context, userID uint, plan string) error
}

type repositoryStore struct {
	repo Repository
}

// NewRepositoryStore stores plans on the user's settings row.
func NewRepositoryStore(repo Repository) SubscriptionStore {
	return &repositoryStore{repo: repo}
}

func (s *repositoryStore) PlanFor(ctx context.Context, userID uint) (string, error) {
	_ = ctx
	us, err := s.repo.GetOrCreateUserSettings(userID)
	if err != nil {
		return "", err
	}
	return normalizePlan(us.Plan), nil
}

func (s *repositoryStore) SetPlan(ctx context.Context, userID uint, plan string) error {
	_ = ctx
	us, err := s.repo.GetOrCreateUserSettings(userID)
	if err != nil {
		return err
	}
	if us.Plan == plan {
		return nil
	}
	us.Plan = plan
	return s.repo.SaveUserSettings(us)
}

// MemoryStore is a concurrency-safe in-process SubscriptionStore.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[uint]string
}

// NewMemoryStore creates an empty store; unknown users are on the free plan.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[uint]string)}
}

func (s *MemoryStore) PlanFor(_ context.Context, userID uint) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.plans[userID]; ok {
		return p, nil
	}
	return string(entitlements.PlanFree), nil
}

func (s *MemoryStore) SetPlan(_ context.Context, userID uint, plan string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[userID] = normalizePlan(plan)
	return nil
}
