package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the authenticated caller of an API request
type UserContext struct {
	UserID        uint   `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Authenticated bool   `json:"authenticated"`
	Plan          string `json:"plan"`
}

// SetUserContext stores the user context on the request
func SetUserContext(c *fiber.Ctx, u UserContext) {
	c.Locals(KeyUserContext, u)
	c.Locals(KeyUserID, u.UserID)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

// IsAuthenticated checks if the request carried a valid API key
func IsAuthenticated(c *fiber.Ctx) bool {
	return GetUserContext(c).Authenticated
}

// GetUserID returns the current user's ID, or 0 if not authenticated
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
