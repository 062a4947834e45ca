package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (GET /plans)
	GetPlans(c *fiber.Ctx) error
	// (GET /plans/{plan})
	GetPlan(c *fiber.Ctx, plan string) error
	// (POST /entitlements/enforce)
	PostEnforceValue(c *fiber.Ctx) error
	// (GET /user/billing)
	GetUserBilling(c *fiber.Ctx) error
	// (POST /generations/validate)
	PostValidateGeneration(c *fiber.Ctx) error
	// (POST /generations)
	PostGeneration(c *fiber.Ctx) error
	// (POST /upgrade-suggestion)
	PostUpgradeSuggestion(c *fiber.Ctx) error
	// (POST /billing/webhooks/{provider})
	PostBillingWebhook(c *fiber.Ctx, provider string) error
}

// DevServerInterface holds handlers only mounted in development.
type DevServerInterface interface {
	// (PUT /dev/plan)
	PutDevPlan(c *fiber.Ctx) error
}

// Options configures RegisterHandlersWithOptions.
type Options struct {
	// Auth guards every operation that declares a security requirement.
	Auth fiber.Handler
	// Dev mounts the development-only routes when set.
	Dev DevServerInterface
}

// serverInterfaceWrapper converts fiber contexts to parameters.
type serverInterfaceWrapper struct {
	handler ServerInterface
}

func (w *serverInterfaceWrapper) getPlan(c *fiber.Ctx) error {
	return w.handler.GetPlan(c, c.Params("plan"))
}

func (w *serverInterfaceWrapper) postBillingWebhook(c *fiber.Ctx) error {
	return w.handler.PostBillingWebhook(c, c.Params("provider"))
}

// RegisterHandlers registers all routes without authentication.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, Options{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options Options) {
	w := &serverInterfaceWrapper{handler: si}
	secured := func(h fiber.Handler) []fiber.Handler {
		if options.Auth == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{options.Auth, h}
	}

	router.Get("/ping", si.GetPing)
	router.Get("/plans", si.GetPlans)
	router.Get("/plans/:plan", w.getPlan)
	router.Post("/entitlements/enforce", si.PostEnforceValue)
	router.Get("/user/billing", secured(si.GetUserBilling)...)
	router.Post("/generations/validate", secured(si.PostValidateGeneration)...)
	router.Post("/generations", secured(si.PostGeneration)...)
	router.Post("/upgrade-suggestion", secured(si.PostUpgradeSuggestion)...)
	router.Post("/billing/webhooks/:provider", w.postBillingWebhook)

	if options.Dev != nil {
		router.Put("/dev/plan", secured(options.Dev.PutDevPlan)...)
	}
}
