package billing

import "time"

// BillingInfo is the read-only snapshot of a user's plan and usage handed to the
// entitlement engine.
type BillingInfo struct {
	UserID       uint              `json:"userId"`
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
	Usage        Usage             `json:"usage"`
}

// SubscriptionInfo is the current subscription of a user. PlanID may be empty.
type SubscriptionInfo struct {
	PlanID           string     `json:"planId,omitempty"`
	Status           string     `json:"status,omitempty"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty"`
}

// Usage holds the monthly counters of a user.
type Usage struct {
	Period      string `json:"period"`
	Generations int64  `json:"generations"`
}

// PlanID returns the subscription plan id or "" when there is no subscription.
func (b BillingInfo) PlanID() string {
	if b.Subscription == nil {
		return ""
	}
	return b.Subscription.PlanID
}

// NormalizedSubscription is the provider-agnostic shape used by the billing
// service when syncing external subscription state into local tables.
type NormalizedSubscription struct {
	UserID                 uint       `json:"user_id" validate:"required"`
	Provider               string     `json:"provider"`
	ProviderSubscriptionID string     `json:"provider_subscription_id" validate:"required"`
	ProviderPlanRef        string     `json:"provider_plan_ref" validate:"required"`
	BillingInterval        string     `json:"billing_interval"`
	Status                 string     `json:"status"`
	CurrentPeriodStart     *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd      bool       `json:"cancel_at_period_end"`
	RawPayloadJSON         string     `json:"-"`
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// Allowance is the result of comparing monthly usage with the plan ceiling.
type Allowance struct {
	Plan      string `json:"plan"`
	Period    string `json:"period"`
	Used      int64  `json:"used"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
}
