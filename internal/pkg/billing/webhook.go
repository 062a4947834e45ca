package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CopyFox/app/models"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

// Subscription webhook event types.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
)

var validate = validator.New()

// WebhookPayload is the provider-neutral event body. Provider adapters upstream
// translate their native events into this shape before signing it.
type WebhookPayload struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type" validate:"required"`
	AccountID    string                 `json:"account_id"`
	Email        string                 `json:"email"`
	Subscription WebhookSubscription    `json:"subscription"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// WebhookSubscription carries the subscription state of an event.
type WebhookSubscription struct {
	ID                 string     `json:"id" validate:"required"`
	UserID             uint       `json:"user_id"`
	PlanRef            string     `json:"plan_ref" validate:"required"`
	Interval           string     `json:"interval"`
	Status             string     `json:"status"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
}

// WebhookOutcome summarizes how an event was handled.
type WebhookOutcome struct {
	EventID   uint   `json:"eventId,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Plan      string `json:"plan,omitempty"`
}

// VerifyWebhookSignature checks a hex HMAC-SHA256 of payload. An optional
// "sha256=" prefix on the header is accepted.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	sig = strings.TrimPrefix(sig, "sha256=")
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// SignWebhookPayload returns the hex signature VerifyWebhookSignature expects.
func SignWebhookPayload(payload []byte, webhookSecret string) string {
	mac := hmac.New(sha256.New, []byte(strings.TrimSpace(webhookSecret)))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseWebhookPayload decodes and validates a normalized event body.
func ParseWebhookPayload(raw []byte) (*WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &p, nil
}

func isSubscriptionEvent(eventType string) bool {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return true
	default:
		return false
	}
}

// ProcessWebhook verifies, records and applies a signed subscription event.
// Redelivered events are reported as duplicates and not applied again.
func (s *Service) ProcessWebhook(ctx context.Context, provider string, raw []byte, signature, secret string) (WebhookOutcome, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !IsKnownProvider(provider) {
		return WebhookOutcome{}, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	// Unsigned bodies are dropped before anything is stored.
	if !VerifyWebhookSignature(raw, signature, secret) {
		logger.L().Warn("webhook signature rejected", zap.String("provider", provider), zap.Int("bytes", len(raw)))
		return WebhookOutcome{}, ErrInvalidSignature
	}

	// Event id and type are read leniently so that malformed bodies are still stored.
	var head struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	_ = json.Unmarshal(raw, &head)

	created, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        provider,
		ProviderEventID: head.ID,
		EventType:       head.Type,
		PayloadJSON:     string(raw),
		SignatureValid:  true,
	})
	if err != nil {
		return WebhookOutcome{}, fmt.Errorf("persist webhook: %w", err)
	}
	out := WebhookOutcome{EventID: stored.ID}
	if !created && stored.IsProcessed() {
		out.Duplicate = true
		return out, nil
	}
	if !isSubscriptionEvent(head.Type) {
		out.Ignored = true
		return out, s.MarkWebhookProcessed(ctx, stored.ID, nil)
	}

	payload, err := ParseWebhookPayload(raw)
	if err != nil {
		_ = s.MarkWebhookProcessed(ctx, stored.ID, err)
		return out, err
	}

	userID, err := s.resolveWebhookUser(ctx, provider, payload)
	if err != nil {
		_ = s.MarkWebhookProcessed(ctx, stored.ID, err)
		if errors.Is(err, ErrUnknownAccount) {
			out.Ignored = true
			return out, nil
		}
		return out, err
	}

	status := payload.Subscription.Status
	if strings.EqualFold(payload.Type, EventSubscriptionDeleted) {
		status = models.BillingStatusCanceled
	}

	_, plan, syncErr := s.SyncSubscription(ctx, NormalizedSubscription{
		UserID:                 userID,
		Provider:               provider,
		ProviderSubscriptionID: payload.Subscription.ID,
		ProviderPlanRef:        payload.Subscription.PlanRef,
		BillingInterval:        payload.Subscription.Interval,
		Status:                 status,
		CurrentPeriodStart:     payload.Subscription.CurrentPeriodStart,
		CurrentPeriodEnd:       payload.Subscription.CurrentPeriodEnd,
		CancelAtPeriodEnd:      payload.Subscription.CancelAtPeriodEnd,
		RawPayloadJSON:         string(raw),
	})
	if markErr := s.MarkWebhookProcessed(ctx, stored.ID, syncErr); markErr != nil {
		logger.L().Warn("failed to mark webhook processed", zap.Uint("event_id", stored.ID), zap.Error(markErr))
	}
	if syncErr != nil {
		return out, fmt.Errorf("sync subscription: %w", syncErr)
	}
	out.Plan = plan
	return out, nil
}

// resolveWebhookUser links the provider account when the event names the
// user, and otherwise looks the user up through an existing link.
func (s *Service) resolveWebhookUser(ctx context.Context, provider string, p *WebhookPayload) (uint, error) {
	userID := p.Subscription.UserID
	accountID := strings.TrimSpace(p.AccountID)
	if userID != 0 {
		if accountID != "" {
			if _, err := s.UpsertBillingAccount(ctx, userID, provider, accountID, p.Email); err != nil {
				return 0, fmt.Errorf("link billing account: %w", err)
			}
		}
		return userID, nil
	}
	if accountID == "" {
		return 0, ErrUnknownAccount
	}
	account, err := s.GetBillingAccountByProviderAccountID(ctx, provider, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUnknownAccount
	}
	if err != nil {
		return 0, err
	}
	return account.UserID, nil
}
