package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ManuelReschke/CopyFox/app/models"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

// UpsertPlanMapping maps a provider price reference to an internal plan.
// An empty interval stores the "unknown" fallback mapping.
func (s *Service) UpsertPlanMapping(ctx context.Context, provider, providerPlanRef, interval, plan string, active bool) (*models.BillingPlanMapping, error) {
	_ = ctx
	p := strings.ToLower(strings.TrimSpace(provider))
	ref := strings.TrimSpace(providerPlanRef)
	if p == "" || ref == "" {
		return nil, errors.New("provider and provider plan ref are required")
	}
	if !IsKnownProvider(p) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	internal, ok := entitlements.ParsePlan(plan)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	m := &models.BillingPlanMapping{
		Provider:        p,
		ProviderPlanRef: ref,
		BillingInterval: normalizeInterval(interval),
		InternalPlan:    string(internal),
		IsActive:        active,
	}
	if err := s.repo.UpsertPlanMapping(m); err != nil {
		return nil, err
	}
	logger.L().Info("plan mapping saved",
		zap.String("provider", m.Provider),
		zap.String("ref", m.ProviderPlanRef),
		zap.String("interval", m.BillingInterval),
		zap.String("plan", m.InternalPlan),
		zap.Bool("active", m.IsActive),
	)
	return m, nil
}

// IssueAPIKey replaces the user's API key and returns the raw secret. The
// secret is not stored and cannot be shown again.
func (s *Service) IssueAPIKey(ctx context.Context, userID uint) (string, error) {
	_ = ctx
	if userID == 0 {
		return "", errors.New("user_id is required")
	}
	us, err := s.repo.GetOrCreateUserSettings(userID)
	if err != nil {
		return "", err
	}
	raw, err := us.IssueAPIKey()
	if err != nil {
		return "", err
	}
	if err := s.repo.SaveUserSettings(us); err != nil {
		return "", err
	}
	logger.L().Info("api key issued", zap.Uint("user_id", userID), zap.String("prefix", us.APIKeyPrefix))
	return raw, nil
}

// RevokeAPIKey disables the user's API key. Revoking without a key is a no-op.
func (s *Service) RevokeAPIKey(ctx context.Context, userID uint) error {
	_ = ctx
	if userID == 0 {
		return errors.New("user_id is required")
	}
	us, err := s.repo.GetOrCreateUserSettings(userID)
	if err != nil {
		return err
	}
	if !us.HasActiveAPIKey() {
		return nil
	}
	us.RevokeAPIKey()
	if err := s.repo.SaveUserSettings(us); err != nil {
		return err
	}
	logger.L().Info("api key revoked", zap.Uint("user_id", userID))
	return nil
}
