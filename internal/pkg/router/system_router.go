package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SystemRouter struct {
	deps Dependencies
}

func (h SystemRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// metrics stay unmounted without credentials
	if h.deps.MetricsUser == "" || h.deps.MetricsPass == "" {
		return
	}
	guard := basicauth.New(basicauth.Config{
		Users: map[string]string{
			h.deps.MetricsUser: h.deps.MetricsPass,
		},
	})

	// prometheus metrics
	app.Get("/metrics", guard, adaptor.HTTPHandler(promhttp.Handler()))
	// fiber metrics
	app.Get("/monitor", guard, monitor.New())
}

func NewSystemRouter(deps Dependencies) *SystemRouter {
	return &SystemRouter{deps: deps}
}
