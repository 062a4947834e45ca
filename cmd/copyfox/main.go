package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"
	"go.uber.org/zap"

	"github.com/ManuelReschke/CopyFox/internal/pkg/apidoc"
	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/cache"
	"github.com/ManuelReschke/CopyFox/internal/pkg/database"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/CopyFox/internal/pkg/env"
	applog "github.com/ManuelReschke/CopyFox/internal/pkg/logger"
	"github.com/ManuelReschke/CopyFox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/CopyFox/internal/pkg/middleware"
	"github.com/ManuelReschke/CopyFox/internal/pkg/router"
)

func main() {
	env.SetupEnvFile()
	applog.SetupLogger()
	defer applog.Sync()
	log := applog.L()

	app, shutdown, err := NewApplication()
	if err != nil {
		log.Fatal("failed to build application", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("shutdown did not complete cleanly", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
	shutdown()
}

// NewApplication wires storage, billing and routes. The returned func stops
// background workers and must run after the server has stopped.
func NewApplication() (*fiber.App, func(), error) {
	log := applog.L()

	if err := entitlements.CheckTable(); err != nil {
		return nil, nil, fmt.Errorf("entitlement table: %w", err)
	}

	deps := router.Dependencies{
		WebhookSecret: env.GetEnv("BILLING_WEBHOOK_SECRET", ""),
		RateLimit:     env.GetEnvInt("API_RATE_LIMIT", 60),
		MetricsUser:   env.GetEnv("METRICS_USER", "admin"),
		MetricsPass:   env.GetEnv("METRICS_PASSWORD", ""),
		Dev:           env.IsDev(),
	}
	if deps.WebhookSecret == "" {
		log.Warn("BILLING_WEBHOOK_SECRET is empty, every webhook will be rejected")
	}
	if deps.MetricsPass == "" {
		log.Warn("METRICS_PASSWORD is empty, /metrics and /monitor are not mounted")
	}

	shutdown := func() {}

	switch env.GetEnv("APP_STORAGE", "mysql") {
	case "memory":
		repo := billing.NewMemoryRepository()
		deps.Billing = billing.NewService(repo, nil, nil)
		deps.KeyStore = repo
		if deps.Dev {
			key, err := deps.Billing.IssueAPIKey(context.Background(), 1)
			if err != nil {
				return nil, nil, err
			}
			log.Info("issued development API key", zap.Uint("user_id", 1), zap.String("api_key", key))
		}
		log.Info("using in-memory storage")

	default:
		if err := database.SetupDatabase(); err != nil {
			return nil, nil, err
		}
		cache.SetupCache()

		repo := billing.NewRepository(database.GetDB())
		meter := counter.NewGenerationMeter(cache.GetClient(), repo)
		store := cache.NewPlanStore(billing.NewRepositoryStore(repo), env.GetEnvDuration("PLAN_CACHE_TTL", cache.DefaultPlanTTL))
		deps.Billing = billing.NewService(repo, store, meter)
		deps.KeyStore = middleware.DatabaseKeyStore()
		deps.LimiterStorage = redisstorage.New(redisstorage.Config{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     cache.Port(),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			Database: env.GetEnvInt("CACHE_DB", 0),
		})

		flusher := counter.NewFlusher(meter, env.GetEnvDuration("USAGE_FLUSH_INTERVAL", 30*time.Second), deps.Billing.CurrentPeriod)
		flusher.Start()
		shutdown = flusher.Stop
	}

	docPath, err := apidoc.Find("./", "../../", "../../../")
	if err != nil {
		return nil, nil, err
	}
	if _, err := apidoc.Load(context.Background(), docPath); err != nil {
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:   "CopyFox",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: docPath,
		Path:     "v1",
	}))

	// ROUTER
	router.InstallRouter(app, deps)

	return app, shutdown, nil
}
