package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/middleware"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the collaborators the routers hand to handlers.
type Dependencies struct {
	Billing       *billing.Service
	KeyStore      middleware.APIKeyStore
	WebhookSecret string
	// LimiterStorage backs the API rate limiter; nil keeps counters in memory.
	LimiterStorage fiber.Storage
	RateLimit      int
	MetricsUser    string
	MetricsPass    string
	Dev            bool
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// System routes first so /metrics is not rate limited with the API.
	setup(app, NewSystemRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
