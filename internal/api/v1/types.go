package apiv1

import (
	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/CopyFox/internal/pkg/generation"
)

// Pong defines model for Pong.
type Pong struct {
	Ping string `json:"ping"`
}

// Error defines model for Error.
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PlanDetails defines model for PlanDetails.
type PlanDetails struct {
	entitlements.PlanInfo
	Limits entitlements.FeatureLimits `json:"limits"`
}

// EnforceRequest defines model for EnforceRequest.
type EnforceRequest struct {
	Plan  string `json:"plan"`
	Field string `json:"field" validate:"required"`
	Value *int   `json:"value" validate:"required"`
}

// ValidationResponse defines model for ValidationResponse.
type ValidationResponse struct {
	Result  generation.ValidationResult `json:"result"`
	Message generation.Message          `json:"message"`
}

// UserBilling defines model for UserBilling.
type UserBilling struct {
	Billing   billing.BillingInfo `json:"billing"`
	Allowance billing.Allowance   `json:"allowance"`
}

// GenerationAccepted defines model for GenerationAccepted.
type GenerationAccepted struct {
	ID        string             `json:"id"`
	Request   generation.Request `json:"request"`
	Warnings  []string           `json:"warnings"`
	Allowance billing.Allowance  `json:"allowance"`
}

// SuggestionRequest defines model for the upgrade suggestion body.
type SuggestionRequest struct {
	Features []string `json:"features" validate:"required"`
}

// DevPlanRequest switches the caller's plan in development.
type DevPlanRequest struct {
	Plan string `json:"plan" validate:"required"`
}
