package billing

import (
	"strings"
	"time"

	"github.com/ManuelReschke/CopyFox/app/models"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
)

func normalizePlan(plan string) string {
	return string(entitlements.NormalizePlan(plan))
}

func planRank(plan string) int {
	return entitlements.Rank(entitlements.NormalizePlan(plan))
}

func normalizeInterval(interval string) string {
	i := strings.ToLower(strings.TrimSpace(interval))
	switch i {
	case "month", "monthly":
		return models.BillingIntervalMonth
	case "year", "yearly", "annual":
		return models.BillingIntervalYear
	default:
		return models.BillingIntervalUnknown
	}
}

func isEntitlingStatus(status string) bool {
	sub := models.BillingSubscription{Status: strings.ToLower(strings.TrimSpace(status))}
	return sub.IsEntitling()
}

// PeriodKey returns the usage period ("2006-01", UTC) containing t.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthlyLimit returns the generation ceiling of a plan; entitlements.Unlimited disables it.
func MonthlyLimit(plan string) int64 {
	return entitlements.Info(entitlements.NormalizePlan(plan)).MonthlyGenerations
}

// IsKnownProvider reports whether provider is one of the supported billing providers.
func IsKnownProvider(provider string) bool {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case models.BillingProviderStripe, models.BillingProviderManual:
		return true
	default:
		return false
	}
}
