package usercontext

// Shared Locals keys used across handlers and middlewares
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserID      = "user_id"
	KeyAPIKey      = "api_key_prefix"
)
