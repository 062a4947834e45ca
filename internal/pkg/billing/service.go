package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CopyFox/app/models"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

// Service owns subscription state and monthly usage. The entitlement engine
// only ever sees the BillingInfo snapshots it produces.
type Service struct {
	repo  Repository
	store SubscriptionStore
	meter UsageMeter
	now   func() time.Time
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, store SubscriptionStore, meter UsageMeter) *Service {
	if store == nil {
		store = NewRepositoryStore(repo)
	}
	if meter == nil {
		meter = NewInMemoryMeter()
	}
	return &Service{repo: repo, store: store, meter: meter, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, meter UsageMeter) *Service {
	repo := NewRepository(db)
	return NewService(repo, NewRepositoryStore(repo), meter)
}

// CurrentPeriod returns the usage period key for the service clock.
func (s *Service) CurrentPeriod() string {
	return PeriodKey(s.now())
}

// GetBillingInfo assembles the plan and usage snapshot of a user.
func (s *Service) GetBillingInfo(ctx context.Context, userID uint) (BillingInfo, error) {
	if userID == 0 {
		return BillingInfo{}, errors.New("user_id is required")
	}
	plan, err := s.store.PlanFor(ctx, userID)
	if err != nil {
		return BillingInfo{}, fmt.Errorf("load plan: %w", err)
	}

	info := BillingInfo{
		UserID:       userID,
		Subscription: &SubscriptionInfo{PlanID: plan, Status: models.BillingStatusActive},
	}

	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return BillingInfo{}, fmt.Errorf("list subscriptions: %w", err)
	}
	for i := range subs {
		sub := subs[i]
		if normalizePlan(sub.InternalPlan) != plan {
			continue
		}
		info.Subscription.Status = sub.Status
		info.Subscription.CurrentPeriodEnd = sub.CurrentPeriodEnd
		if sub.IsEntitling() {
			break
		}
	}

	period := s.CurrentPeriod()
	used, err := s.meter.Generations(ctx, userID, period)
	if err != nil {
		return BillingInfo{}, fmt.Errorf("load usage: %w", err)
	}
	info.Usage = Usage{Period: period, Generations: used}
	return info, nil
}

// CheckGenerationAllowance compares the user's usage with the plan ceiling
// without recording anything.
func (s *Service) CheckGenerationAllowance(ctx context.Context, userID uint) (Allowance, error) {
	info, err := s.GetBillingInfo(ctx, userID)
	if err != nil {
		return Allowance{}, err
	}
	a := newAllowance(info.PlanID(), info.Usage.Period, info.Usage.Generations)
	if a.Limit != entitlements.Unlimited && a.Used >= a.Limit {
		return a, ErrGenerationLimitReached
	}
	return a, nil
}

// ReserveGeneration atomically counts one generation against the monthly ceiling.
func (s *Service) ReserveGeneration(ctx context.Context, userID uint) (Allowance, error) {
	if userID == 0 {
		return Allowance{}, errors.New("user_id is required")
	}
	plan, err := s.store.PlanFor(ctx, userID)
	if err != nil {
		return Allowance{}, fmt.Errorf("load plan: %w", err)
	}
	period := s.CurrentPeriod()
	used, ok, err := s.meter.Reserve(ctx, userID, period, MonthlyLimit(plan))
	if err != nil {
		return Allowance{}, fmt.Errorf("reserve generation: %w", err)
	}
	a := newAllowance(plan, period, used)
	if !ok {
		logger.L().Info("generation limit reached",
			zap.Uint("user_id", userID),
			zap.String("plan", plan),
			zap.Int64("used", used),
		)
		return a, ErrGenerationLimitReached
	}
	return a, nil
}

// ReleaseGeneration returns a reservation for a generation that was never
// accepted. period is the Allowance.Period returned by ReserveGeneration.
func (s *Service) ReleaseGeneration(ctx context.Context, userID uint, period string) error {
	if period == "" {
		period = s.CurrentPeriod()
	}
	return s.meter.Release(ctx, userID, period)
}

func newAllowance(plan, period string, used int64) Allowance {
	limit := MonthlyLimit(plan)
	remaining := entitlements.Unlimited
	if limit != entitlements.Unlimited {
		remaining = limit - used
		if remaining < 0 {
			remaining = 0
		}
	}
	return Allowance{Plan: normalizePlan(plan), Period: period, Used: used, Limit: limit, Remaining: remaining}
}

// UpsertBillingAccount creates or updates a linked billing identity for a user.
func (s *Service) UpsertBillingAccount(ctx context.Context, userID uint, provider, providerAccountID, email string) (*models.BillingAccount, error) {
	_ = ctx
	p := strings.ToLower(strings.TrimSpace(provider))
	paID := strings.TrimSpace(providerAccountID)
	if userID == 0 || p == "" || paID == "" {
		return nil, errors.New("user_id, provider and provider_account_id are required")
	}

	account := &models.BillingAccount{
		UserID:            userID,
		Provider:          p,
		ProviderAccountID: paID,
		Email:             strings.TrimSpace(email),
	}
	if err := s.repo.UpsertBillingAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetBillingAccountByProviderAccountID resolves a provider account to local account linkage.
func (s *Service) GetBillingAccountByProviderAccountID(ctx context.Context, provider, providerAccountID string) (*models.BillingAccount, error) {
	_ = ctx
	p := strings.ToLower(strings.TrimSpace(provider))
	paID := strings.TrimSpace(providerAccountID)
	if p == "" || paID == "" {
		return nil, errors.New("provider and provider_account_id are required")
	}
	return s.repo.GetBillingAccountByProviderAccountID(p, paID)
}

// ResolveMappedPlan resolves provider plan references to an internal plan.
func (s *Service) ResolveMappedPlan(ctx context.Context, provider, providerPlanRef, interval string) (string, error) {
	_ = ctx
	p := strings.ToLower(strings.TrimSpace(provider))
	ref := strings.TrimSpace(providerPlanRef)
	i := normalizeInterval(interval)
	if p == "" || ref == "" {
		return string(entitlements.PlanFree), errors.New("provider and provider plan ref are required")
	}

	// Prefer exact interval match.
	m, err := s.repo.FindActivePlanMapping(p, ref, i)
	if err == nil {
		return normalizePlan(m.InternalPlan), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	// Fallback for mappings that intentionally use "unknown".
	m, err = s.repo.FindActivePlanMapping(p, ref, models.BillingIntervalUnknown)
	if err == nil {
		return normalizePlan(m.InternalPlan), nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return string(entitlements.PlanFree), gorm.ErrRecordNotFound
	}
	return "", err
}

// SyncSubscription upserts provider subscription data and reconciles user plan.
func (s *Service) SyncSubscription(ctx context.Context, in NormalizedSubscription) (*models.BillingSubscription, string, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if in.UserID == 0 || provider == "" || strings.TrimSpace(in.ProviderSubscriptionID) == "" {
		return nil, "", errors.New("user_id, provider and provider_subscription_id are required")
	}

	interval := normalizeInterval(in.BillingInterval)
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.BillingStatusActive
	}

	internalPlan, err := s.ResolveMappedPlan(ctx, provider, in.ProviderPlanRef, interval)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.L().Warn("unmapped provider plan, treating as free",
			zap.String("provider", provider),
			zap.String("provider_plan_ref", in.ProviderPlanRef),
		)
	}
	if internalPlan == "" {
		internalPlan = string(entitlements.PlanFree)
	}

	sub := &models.BillingSubscription{
		UserID:                 in.UserID,
		Provider:               provider,
		ProviderSubscriptionID: strings.TrimSpace(in.ProviderSubscriptionID),
		ProviderPlanRef:        strings.TrimSpace(in.ProviderPlanRef),
		InternalPlan:           internalPlan,
		BillingInterval:        interval,
		Status:                 status,
		CurrentPeriodStart:     in.CurrentPeriodStart,
		CurrentPeriodEnd:       in.CurrentPeriodEnd,
		CancelAtPeriodEnd:      in.CancelAtPeriodEnd,
		RawPayloadJSON:         in.RawPayloadJSON,
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, "", err
	}

	effectivePlan, err := s.ReconcileUserPlan(ctx, in.UserID)
	if err != nil {
		return sub, "", err
	}
	return sub, effectivePlan, nil
}

// ReconcileUserPlan computes and writes the best effective plan for a user.
// Among entitling subscriptions the highest tier wins; on equal tiers the
// first one listed is kept.
func (s *Service) ReconcileUserPlan(ctx context.Context, userID uint) (string, error) {
	if userID == 0 {
		return "", errors.New("user_id is required")
	}

	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return "", err
	}

	best := string(entitlements.PlanFree)
	for _, sub := range subs {
		if !isEntitlingStatus(sub.Status) {
			continue
		}
		candidate := normalizePlan(sub.InternalPlan)
		if planRank(candidate) > planRank(best) {
			best = candidate
		}
	}

	current, err := s.store.PlanFor(ctx, userID)
	if err != nil {
		return "", err
	}
	if normalizePlan(current) == best {
		return best, nil
	}
	if err := s.store.SetPlan(ctx, userID, best); err != nil {
		return "", err
	}
	logger.L().Info("user plan reconciled",
		zap.Uint("user_id", userID),
		zap.String("from", current),
		zap.String("to", best),
	)
	return best, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// SetUserPlan overrides the effective plan of a user without a subscription.
// It backs the development plan switcher.
func (s *Service) SetUserPlan(ctx context.Context, userID uint, plan string) error {
	p, ok := entitlements.ParsePlan(plan)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	if userID == 0 {
		return errors.New("user_id is required")
	}
	return s.store.SetPlan(ctx, userID, string(p))
}
