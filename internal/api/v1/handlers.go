package apiv1

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/CopyFox/internal/pkg/generation"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
	"github.com/ManuelReschke/CopyFox/internal/pkg/metrics"
	"github.com/ManuelReschke/CopyFox/internal/pkg/usercontext"
)

const requestTimeout = 15 * time.Second

var validate = validator.New()

// APIServer implements the ServerInterface
type APIServer struct {
	billing       *billing.Service
	webhookSecret string
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *billing.Service, webhookSecret string) *APIServer {
	return &APIServer{billing: svc, webhookSecret: webhookSecret}
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Error{Error: code, Message: message})
}

// bindBody decodes and validates the JSON body. When it returns false the
// error response has already been written.
func bindBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if err := validate.Struct(out); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	return true, nil
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// GetPlans returns the plan catalog with limits.
func (s *APIServer) GetPlans(c *fiber.Ctx) error {
	catalog := entitlements.Catalog()
	out := make([]PlanDetails, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, PlanDetails{PlanInfo: p, Limits: entitlements.LimitsFor(p.ID)})
	}
	return c.JSON(out)
}

// GetPlan returns one plan. Unlike the engine, unknown ids are a 404 here.
func (s *APIServer) GetPlan(c *fiber.Ctx, plan string) error {
	p, ok := entitlements.ParsePlan(plan)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Unknown plan: "+plan)
	}
	return c.JSON(PlanDetails{PlanInfo: entitlements.Info(p), Limits: entitlements.LimitsFor(p)})
}

// PostEnforceValue clamps a single numeric value, e.g. for slider feedback.
// Unknown fields are returned unchanged.
func (s *APIServer) PostEnforceValue(c *fiber.Ctx) error {
	var req EnforceRequest
	if ok, err := bindBody(c, &req); !ok {
		return err
	}
	limits := entitlements.LimitsFor(entitlements.NormalizePlan(req.Plan))
	return c.JSON(entitlements.ValidateAndEnforceValue(limits, entitlements.Field(req.Field), *req.Value))
}

// GetUserBilling returns the caller's plan, usage and remaining generations.
func (s *APIServer) GetUserBilling(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	userID := usercontext.GetUserID(c)
	info, err := s.billing.GetBillingInfo(ctx, userID)
	if err != nil {
		logger.L().Error("load billing info failed", zap.Uint("user_id", userID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Billing information unavailable")
	}
	allowance, err := s.billing.CheckGenerationAllowance(ctx, userID)
	if err != nil && !errors.Is(err, billing.ErrGenerationLimitReached) {
		logger.L().Error("check allowance failed", zap.Uint("user_id", userID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Billing information unavailable")
	}
	return c.JSON(UserBilling{Billing: info, Allowance: allowance})
}

// validateForCaller parses a generation request and validates it against the
// caller's billing snapshot. A non-nil error means a response was written.
func (s *APIServer) validateForCaller(ctx context.Context, c *fiber.Ctx) (billing.BillingInfo, generation.ValidationResult, generation.Request, bool, error) {
	var req generation.Request
	if ok, err := bindBody(c, &req); !ok {
		return billing.BillingInfo{}, generation.ValidationResult{}, req, false, err
	}

	userID := usercontext.GetUserID(c)
	info, err := s.billing.GetBillingInfo(ctx, userID)
	if err != nil {
		logger.L().Error("load billing info failed", zap.Uint("user_id", userID), zap.Error(err))
		return info, generation.ValidationResult{}, req, false, errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Billing information unavailable")
	}

	res, run := generation.Prepare(info, req)
	metrics.ObserveValidation(string(entitlements.NormalizePlan(info.PlanID())), res.IsValid, res.Denied, res.Adjusted)
	return info, res, run, true, nil
}

// PostValidateGeneration validates a request without consuming quota.
func (s *APIServer) PostValidateGeneration(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	_, res, _, ok, err := s.validateForCaller(ctx, c)
	if !ok {
		return err
	}
	return c.JSON(ValidationResponse{Result: res, Message: generation.FormatValidationErrors(res)})
}

// PostGeneration validates a request, reserves one generation and accepts it.
func (s *APIServer) PostGeneration(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	info, res, run, ok, err := s.validateForCaller(ctx, c)
	if !ok {
		return err
	}
	plan := string(entitlements.NormalizePlan(info.PlanID()))
	if !res.IsValid {
		metrics.GenerationsTotal.WithLabelValues(plan, "rejected").Inc()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationResponse{Result: res, Message: generation.FormatValidationErrors(res)})
	}

	allowance, err := s.billing.ReserveGeneration(ctx, info.UserID)
	if errors.Is(err, billing.ErrGenerationLimitReached) {
		metrics.GenerationsTotal.WithLabelValues(plan, "limit_reached").Inc()
		return errorJSON(c, fiber.StatusPaymentRequired, "payment_required", "Monthly generation limit reached. Upgrade your plan to continue.")
	}
	if err != nil {
		logger.L().Error("reserve generation failed", zap.Uint("user_id", info.UserID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Could not reserve generation")
	}

	// A caller that went away or timed out during the reservation is not charged.
	if ctx.Err() != nil {
		s.releaseGeneration(ctx, info.UserID, allowance.Period)
		metrics.GenerationsTotal.WithLabelValues(plan, "canceled").Inc()
		return errorJSON(c, fiber.StatusServiceUnavailable, "service_unavailable", "Request canceled before the generation was accepted")
	}

	if err := c.Status(fiber.StatusAccepted).JSON(GenerationAccepted{
		ID:        uuid.NewString(),
		Request:   run,
		Warnings:  res.Warnings,
		Allowance: allowance,
	}); err != nil {
		s.releaseGeneration(ctx, info.UserID, allowance.Period)
		return err
	}
	metrics.GenerationsTotal.WithLabelValues(plan, "accepted").Inc()
	return nil
}

// releaseGeneration undoes a reservation on a context detached from the
// request, which may already be canceled.
func (s *APIServer) releaseGeneration(ctx context.Context, userID uint, period string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.billing.ReleaseGeneration(rctx, userID, period); err != nil {
		logger.L().Error("release generation failed", zap.Uint("user_id", userID), zap.String("period", period), zap.Error(err))
	}
}

// PostUpgradeSuggestion tells the caller which plan unlocks the given features.
func (s *APIServer) PostUpgradeSuggestion(c *fiber.Ctx) error {
	var req SuggestionRequest
	if ok, err := bindBody(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()
	info, err := s.billing.GetBillingInfo(ctx, usercontext.GetUserID(c))
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Billing information unavailable")
	}
	limits := entitlements.LimitsFor(entitlements.NormalizePlan(info.PlanID()))
	return c.JSON(generation.UpgradeSuggestion(limits, req.Features))
}

// PostBillingWebhook stores and applies a signed subscription event.
func (s *APIServer) PostBillingWebhook(c *fiber.Ctx, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !billing.IsKnownProvider(provider) {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Unknown billing provider")
	}
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("X-Signature")

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	out, err := s.billing.ProcessWebhook(ctx, provider, rawBody, signature, s.webhookSecret)
	switch {
	case errors.Is(err, billing.ErrInvalidSignature):
		metrics.WebhooksTotal.WithLabelValues(provider, "invalid_signature").Inc()
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Invalid webhook signature")
	case errors.Is(err, billing.ErrInvalidPayload):
		metrics.WebhooksTotal.WithLabelValues(provider, "invalid_payload").Inc()
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", err.Error())
	case err != nil:
		metrics.WebhooksTotal.WithLabelValues(provider, "failed").Inc()
		logger.L().Error("webhook processing failed", zap.String("provider", provider), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook processing failed")
	}

	result := "applied"
	switch {
	case out.Duplicate:
		result = "duplicate"
	case out.Ignored:
		result = "ignored"
	}
	metrics.WebhooksTotal.WithLabelValues(provider, result).Inc()
	return c.JSON(out)
}

// PutDevPlan switches the caller's plan. Mounted only in development.
func (s *APIServer) PutDevPlan(c *fiber.Ctx) error {
	var req DevPlanRequest
	if ok, err := bindBody(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	userID := usercontext.GetUserID(c)
	if err := s.billing.SetUserPlan(ctx, userID, req.Plan); err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			return errorJSON(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Could not change plan")
	}
	info, err := s.billing.GetBillingInfo(ctx, userID)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Billing information unavailable")
	}
	return c.JSON(info)
}
