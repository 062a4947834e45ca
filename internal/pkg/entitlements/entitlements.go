package entitlements

import (
	"fmt"
	"strings"
)

type Plan string

const (
	PlanFree             Plan = "free"
	PlanPro              Plan = "pro"
	PlanProYearly        Plan = "pro_yearly"
	PlanBusiness         Plan = "business"
	PlanBusinessYearly   Plan = "business_yearly"
	PlanEnterprise       Plan = "enterprise"
	PlanEnterpriseYearly Plan = "enterprise_yearly"
)

// Feature names a boolean capability flag of a plan.
type Feature string

const (
	FeatureAdvancedOptions Feature = "advancedOptions"
	FeatureCustomPersonas  Feature = "customPersonas"
	FeatureBatchGeneration Feature = "batchGeneration"
	FeatureAnalytics       Feature = "analytics"
	FeatureAPIAccess       Feature = "apiAccess"
	FeatureSEOOptimization Feature = "seoOptimization"
	FeatureImageGeneration Feature = "imageGeneration"
	FeaturePremiumStyles   Feature = "premiumStyles"
	FeaturePremiumMoods    Feature = "premiumMoods"
)

// Features lists every known capability flag in display order.
var Features = []Feature{
	FeatureAdvancedOptions,
	FeatureCustomPersonas,
	FeatureBatchGeneration,
	FeatureAnalytics,
	FeatureAPIAccess,
	FeatureSEOOptimization,
	FeatureImageGeneration,
	FeaturePremiumStyles,
	FeaturePremiumMoods,
}

// Range bounds a contiguous numeric input.
type Range struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// OptionSet bounds a discrete numeric input. Options are strictly increasing.
type OptionSet struct {
	Min     int   `json:"min"`
	Max     int   `json:"max"`
	Default int   `json:"default"`
	Options []int `json:"options"`
}

// FeatureLimits is the full bundle of numeric bounds and capability flags granted by a plan.
type FeatureLimits struct {
	BatchVariations Range     `json:"batchVariations"`
	CourseModules   OptionSet `json:"courseModules"`

	AdvancedOptions bool `json:"advancedOptions"`
	CustomPersonas  bool `json:"customPersonas"`
	BatchGeneration bool `json:"batchGeneration"`
	Analytics       bool `json:"analytics"`
	APIAccess       bool `json:"apiAccess"`
	SEOOptimization bool `json:"seoOptimization"`
	ImageGeneration bool `json:"imageGeneration"`
	PremiumStyles   bool `json:"premiumStyles"`
	PremiumMoods    bool `json:"premiumMoods"`
}

// Flag returns the flag value for a feature and whether the feature is known.
func (l FeatureLimits) Flag(f Feature) (enabled, known bool) {
	switch f {
	case FeatureAdvancedOptions:
		return l.AdvancedOptions, true
	case FeatureCustomPersonas:
		return l.CustomPersonas, true
	case FeatureBatchGeneration:
		return l.BatchGeneration, true
	case FeatureAnalytics:
		return l.Analytics, true
	case FeatureAPIAccess:
		return l.APIAccess, true
	case FeatureSEOOptimization:
		return l.SEOOptimization, true
	case FeatureImageGeneration:
		return l.ImageGeneration, true
	case FeaturePremiumStyles:
		return l.PremiumStyles, true
	case FeaturePremiumMoods:
		return l.PremiumMoods, true
	default:
		return false, false
	}
}

// planLimits is the single source of truth for every bound and flag.
// pro_yearly ships with batchGeneration disabled while pro enables it; the
// entry is kept as-is until product confirms which one is intended.
var planLimits = map[Plan]FeatureLimits{
	PlanFree: {
		BatchVariations: Range{Min: 1, Max: 2, Default: 1},
		CourseModules:   OptionSet{Min: 3, Max: 5, Default: 3, Options: []int{3, 5}},
	},
	PlanPro: {
		BatchVariations: Range{Min: 1, Max: 3, Default: 2},
		CourseModules:   OptionSet{Min: 3, Max: 7, Default: 5, Options: []int{3, 5, 7}},
		AdvancedOptions: true,
		BatchGeneration: true,
		Analytics:       true,
		SEOOptimization: true,
		ImageGeneration: true,
		PremiumStyles:   true,
		PremiumMoods:    true,
	},
	PlanProYearly: {
		BatchVariations: Range{Min: 1, Max: 3, Default: 2},
		CourseModules:   OptionSet{Min: 3, Max: 7, Default: 5, Options: []int{3, 5, 7}},
		AdvancedOptions: true,
		BatchGeneration: false,
		Analytics:       true,
		SEOOptimization: true,
		ImageGeneration: true,
		PremiumStyles:   true,
		PremiumMoods:    true,
	},
	PlanBusiness: {
		BatchVariations: Range{Min: 1, Max: 5, Default: 3},
		CourseModules:   OptionSet{Min: 3, Max: 10, Default: 5, Options: []int{3, 5, 7, 10}},
		AdvancedOptions: true,
		CustomPersonas:  true,
		BatchGeneration: true,
		Analytics:       true,
		SEOOptimization: true,
		ImageGeneration: true,
		PremiumStyles:   true,
		PremiumMoods:    true,
	},
	PlanBusinessYearly: {
		BatchVariations: Range{Min: 1, Max: 5, Default: 3},
		CourseModules:   OptionSet{Min: 3, Max: 10, Default: 5, Options: []int{3, 5, 7, 10}},
		AdvancedOptions: true,
		CustomPersonas:  true,
		BatchGeneration: true,
		Analytics:       true,
		SEOOptimization: true,
		ImageGeneration: true,
		PremiumStyles:   true,
		PremiumMoods:    true,
	},
	PlanEnterprise: {
		BatchVariations: Range{Min: 1, Max: 10, Default: 5},
		CourseModules:   OptionSet{Min: 3, Max: 15, Default: 7, Options: []int{3, 5, 7, 10, 12, 15}},
		AdvancedOptions: true,
		CustomPersonas:  true,
		BatchGeneration: true,
		Analytics:       true,
		APIAccess:       true,
		SEOOptimization: true,
		ImageGeneration: true,
		PremiumStyles:   true,
		PremiumMoods:    true,
	},
	PlanEnterpriseYearly: {
		BatchVariations: Range{Min: 1, Max: 10, Default: 5},
		CourseModules:   OptionSet{Min: 3, Max: 15, Default: 7, Options: []int{3, 5, 7, 10, 12, 15}},
		AdvancedOptions: true,
		CustomPersonas:  true,
		BatchGeneration: true,
		Analytics:       true,
		APIAccess:       true,
		SEOOptimization: true,
		ImageGeneration: true,
		PremiumStyles:   true,
		PremiumMoods:    true,
	},
}

// LimitsFor returns the limits of a plan. Unknown or empty plans get the free limits.
// The returned value owns its own Options slice.
func LimitsFor(plan Plan) FeatureLimits {
	l, ok := planLimits[plan]
	if !ok {
		l = planLimits[PlanFree]
	}
	l.CourseModules.Options = append([]int(nil), l.CourseModules.Options...)
	return l
}

// ParsePlan normalizes a raw plan id and reports whether it is a known plan.
func ParsePlan(raw string) (Plan, bool) {
	p := Plan(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := planLimits[p]
	return p, ok
}

// NormalizePlan maps any raw plan id to a known plan, falling back to free.
func NormalizePlan(raw string) Plan {
	if p, ok := ParsePlan(raw); ok {
		return p
	}
	return PlanFree
}

// CheckTable verifies the structural invariants of every plan entry.
func CheckTable() error {
	for plan, l := range planLimits {
		b := l.BatchVariations
		if b.Min > b.Default || b.Default > b.Max {
			return fmt.Errorf("plan %s: batchVariations requires min <= default <= max, got %d/%d/%d", plan, b.Min, b.Default, b.Max)
		}
		c := l.CourseModules
		if len(c.Options) == 0 {
			return fmt.Errorf("plan %s: courseModules has no options", plan)
		}
		found := false
		for i, o := range c.Options {
			if i > 0 && o <= c.Options[i-1] {
				return fmt.Errorf("plan %s: courseModules options must be strictly increasing", plan)
			}
			if o == c.Default {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("plan %s: courseModules default %d is not an option", plan, c.Default)
		}
	}
	return nil
}
