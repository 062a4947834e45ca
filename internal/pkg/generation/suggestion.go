package generation

import "github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"

// Suggestion tells the UI whether an upgrade would unlock the requested features.
type Suggestion struct {
	ShouldUpgrade   bool     `json:"shouldUpgrade"`
	RecommendedPlan string   `json:"recommendedPlan,omitempty"`
	MissingFeatures []string `json:"missingFeatures"`
}

// UpgradeSuggestion lists requested features the current limits do not enable.
// Missing API access or batch generation points to enterprise, anything else to pro.
func UpgradeSuggestion(current entitlements.FeatureLimits, features []string) Suggestion {
	out := Suggestion{MissingFeatures: []string{}}
	needsTop := false
	for _, name := range features {
		if entitlements.CanUseFeature(current, name) {
			continue
		}
		out.MissingFeatures = append(out.MissingFeatures, name)
		switch entitlements.Feature(name) {
		case entitlements.FeatureAPIAccess, entitlements.FeatureBatchGeneration:
			needsTop = true
		}
	}

	if len(out.MissingFeatures) == 0 {
		return out
	}
	out.ShouldUpgrade = true
	if needsTop {
		out.RecommendedPlan = string(entitlements.PlanEnterprise)
	} else {
		out.RecommendedPlan = string(entitlements.PlanPro)
	}
	return out
}

// GenerateAllowance surfaces the monthly ceiling of a plan. Usage is compared
// against it by the billing service, not here.
type GenerateAllowance struct {
	CanGenerate bool  `json:"canGenerate"`
	PlanLimit   int64 `json:"planLimit"`
}

// CanUserGenerate always allows generation and reports the plan's monthly limit.
func CanUserGenerate(plan entitlements.Plan) GenerateAllowance {
	return GenerateAllowance{
		CanGenerate: true,
		PlanLimit:   entitlements.Info(entitlements.NormalizePlan(string(plan))).MonthlyGenerations,
	}
}
