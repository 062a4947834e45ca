package generation

import "strings"

const pricingURL = "/pricing"

// Message is a single user-facing summary of a ValidationResult.
type Message struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	ActionText string `json:"actionText,omitempty"`
	ActionURL  string `json:"actionUrl,omitempty"`
}

// FormatValidationErrors picks errors over warnings.
func FormatValidationErrors(res ValidationResult) Message {
	switch {
	case len(res.Errors) > 0:
		return Message{
			Title:      "Upgrade required",
			Message:    strings.Join(res.Errors, ". "),
			ActionText: "View plans",
			ActionURL:  pricingURL,
		}
	case len(res.Warnings) > 0:
		return Message{
			Title:   "Request adjusted",
			Message: strings.Join(res.Warnings, ". "),
		}
	default:
		return Message{
			Title:   "Ready to generate",
			Message: "Your request is within your plan limits",
		}
	}
}
