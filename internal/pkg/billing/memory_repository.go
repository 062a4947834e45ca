package billing

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/CopyFox/app/models"
)

// MemoryRepository is a concurrency-safe in-process Repository for tests and
// running without a database.
type MemoryRepository struct {
	mu sync.Mutex

	mappings map[string]models.BillingPlanMapping
	accounts []models.BillingAccount
	subs     []models.BillingSubscription
	settings map[uint]*models.UserSettings
	events   []models.BillingWebhookEvent
	usage    map[string]int64
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mappings: map[string]models.BillingPlanMapping{},
		settings: map[uint]*models.UserSettings{},
		usage:    map[string]int64{},
	}
}

// AddPlanMapping registers an active provider plan mapping.
func (r *MemoryRepository) AddPlanMapping(provider, ref, interval, plan string) {
	_ = r.UpsertPlanMapping(&models.BillingPlanMapping{
		Provider:        provider,
		ProviderPlanRef: ref,
		BillingInterval: interval,
		InternalPlan:    plan,
		IsActive:        true,
	})
}

func (r *MemoryRepository) UpsertPlanMapping(m *models.BillingPlanMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.mappings[m.Key()]; ok {
		m.ID = prev.ID
	} else {
		m.ID = uint(len(r.mappings) + 1)
	}
	r.mappings[m.Key()] = *m
	return nil
}

func (r *MemoryRepository) FindActivePlanMapping(provider, providerPlanRef, interval string) (*models.BillingPlanMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[models.PlanMappingKey(provider, providerPlanRef, interval)]
	if !ok || !m.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *MemoryRepository) UpsertBillingAccount(account *models.BillingAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		a := &r.accounts[i]
		if a.Provider == account.Provider && a.ProviderAccountID == account.ProviderAccountID {
			a.UserID = account.UserID
			a.Email = account.Email
			*account = *a
			return nil
		}
	}
	account.ID = uint(len(r.accounts) + 1)
	r.accounts = append(r.accounts, *account)
	return nil
}

func (r *MemoryRepository) GetBillingAccountByProviderAccountID(provider, providerAccountID string) (*models.BillingAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Provider == provider && a.ProviderAccountID == providerAccountID {
			out := a
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryRepository) UpsertSubscription(sub *models.BillingSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.subs {
		s := &r.subs[i]
		if s.Provider == sub.Provider && s.ProviderSubscriptionID == sub.ProviderSubscriptionID {
			sub.ID = s.ID
			*s = *sub
			return nil
		}
	}
	sub.ID = uint(len(r.subs) + 1)
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *MemoryRepository) ListSubscriptionsByUser(userID uint) ([]models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BillingSubscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetOrCreateUserSettings(userID uint) (*models.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	us, ok := r.settings[userID]
	if !ok {
		us = &models.UserSettings{ID: uint(len(r.settings) + 1), UserID: userID, Plan: "free", Active: true}
		r.settings[userID] = us
	}
	out := *us
	return &out, nil
}

func (r *MemoryRepository) SaveUserSettings(us *models.UserSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *us
	r.settings[us.UserID] = &stored
	return nil
}

func (r *MemoryRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Provider == event.Provider && e.ProviderEventID == event.ProviderEventID {
			out := e
			return false, &out, nil
		}
	}
	event.ID = uint(len(r.events) + 1)
	r.events = append(r.events, *event)
	out := *event
	return true, &out, nil
}

// WebhookEventCount reports how many webhook events have been stored.
func (r *MemoryRepository) WebhookEventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *MemoryRepository) MarkWebhookProcessed(id uint, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			now := time.Now()
			r.events[i].ProcessedAt = &now
			r.events[i].ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *MemoryRepository) GetGenerationUsage(userID uint, period string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage[usageRowKey(userID, period)], nil
}

func (r *MemoryRepository) AddGenerationUsage(period string, increments map[uint]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range increments {
		r.usage[usageRowKey(id, period)] += n
	}
	return nil
}

func usageRowKey(userID uint, period string) string {
	return fmt.Sprintf("%s/%d", period, userID)
}

// FindByAPIKeyHash resolves an active API key to its owner.
func (r *MemoryRepository) FindByAPIKeyHash(hash string) (*models.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, us := range r.settings {
		if us.HasActiveAPIKey() && us.APIKeyHash == hash {
			out := *us
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// TouchAPIKey records the last use of an API key.
func (r *MemoryRepository) TouchAPIKey(settingsID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, us := range r.settings {
		if us.ID == settingsID {
			us.APIKeyLastUsedAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
