package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CopyFox/app/models"
	"github.com/ManuelReschke/CopyFox/internal/pkg/database"
	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
	"github.com/ManuelReschke/CopyFox/internal/pkg/usercontext"
)

// APIKeyStore resolves hashed API keys to their owners.
type APIKeyStore interface {
	FindByAPIKeyHash(hash string) (*models.UserSettings, error)
	TouchAPIKey(settingsID uint, at time.Time) error
}

type dbKeyStore struct{}

// DatabaseKeyStore looks keys up in the user_settings table.
func DatabaseKeyStore() APIKeyStore {
	return dbKeyStore{}
}

func (dbKeyStore) FindByAPIKeyHash(hash string) (*models.UserSettings, error) {
	db := database.GetDB()
	if db == nil {
		return nil, errors.New("database unavailable")
	}
	return models.FindUserSettingsByAPIKeyHash(db, hash)
}

func (dbKeyStore) TouchAPIKey(settingsID uint, at time.Time) error {
	db := database.GetDB()
	if db == nil {
		return errors.New("database unavailable")
	}
	return db.Model(&models.UserSettings{}).
		Where("id = ?", settingsID).
		Updates(map[string]any{"api_key_last_used_at": at}).Error
}

// APIKeyAuthMiddleware authenticates requests carrying a user API key header.
func APIKeyAuthMiddleware(store APIKeyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		settings, err := store.FindByAPIKeyHash(models.HashAPIKey(apiKey))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
			}
			logger.L().Error("api key lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		if !settings.Active {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "User inactive"})
		}

		if settings.Plan == "" {
			settings.Plan = "free"
		}

		// Refresh last-used timestamp best-effort.
		if err := store.TouchAPIKey(settings.ID, time.Now()); err != nil {
			logger.L().Warn("failed to update api key usage timestamp", zap.Uint("user_id", settings.UserID), zap.Error(err))
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:        settings.UserID,
			DisplayName:   settings.DisplayName,
			Authenticated: true,
			Plan:          settings.Plan,
		})
		c.Locals(usercontext.KeyAPIKey, settings.APIKeyPrefix)

		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
