package billing

import "errors"

var (
	// ErrGenerationLimitReached is returned when the monthly generation ceiling is used up.
	ErrGenerationLimitReached = errors.New("monthly generation limit reached")
	// ErrInvalidSignature is returned for webhook payloads that fail verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidPayload is returned for webhook bodies that cannot be decoded or miss required fields.
	ErrInvalidPayload = errors.New("invalid webhook payload")
	// ErrUnknownProvider is returned for webhooks and mappings naming a provider CopyFox does not bill through.
	ErrUnknownProvider = errors.New("unknown billing provider")
	// ErrUnknownAccount is returned when a webhook names a customer that is not linked to a user.
	ErrUnknownAccount = errors.New("billing account not linked to a user")
)

// ErrUnknownPlan is returned when a plan id is not part of the catalog.
var ErrUnknownPlan = errors.New("unknown plan")
