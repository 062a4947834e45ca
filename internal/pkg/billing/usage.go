package billing

import (
	"context"
	"sync"
)

// UsageMeter counts generations per user and period.
type UsageMeter interface {
	// Generations returns the number of generations recorded for the period.
	Generations(ctx context.Context, userID uint, period string) (int64, error)
	// Reserve records one generation unless that would exceed limit. A negative
	// limit is unlimited. It returns the count after the attempt.
	Reserve(ctx context.Context, userID uint, period string, limit int64) (used int64, ok bool, err error)
	// Release gives back a reservation whose generation never started.
	Release(ctx context.Context, userID uint, period string) error
}

type usageKey struct {
	userID uint
	period string
}

// InMemoryMeter is a thread-safe UsageMeter for tests and development.
type InMemoryMeter struct {
	mu     sync.Mutex
	counts map[usageKey]int64
}

// NewInMemoryMeter creates an InMemoryMeter.
func NewInMemoryMeter() *InMemoryMeter {
	return &InMemoryMeter{counts: make(map[usageKey]int64)}
}

func (m *InMemoryMeter) Generations(_ context.Context, userID uint, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[usageKey{userID, period}], nil
}

func (m *InMemoryMeter) Reserve(_ context.Context, userID uint, period string, limit int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := usageKey{userID, period}
	used := m.counts[k]
	if limit >= 0 && used >= limit {
		return used, false, nil
	}
	m.counts[k] = used + 1
	return used + 1, true, nil
}

func (m *InMemoryMeter) Release(_ context.Context, userID uint, period string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := usageKey{userID, period}
	if m.counts[k] > 0 {
		m.counts[k]--
	}
	return nil
}
