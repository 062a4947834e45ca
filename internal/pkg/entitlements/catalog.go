package entitlements

// Unlimited marks a ceiling that is not enforced.
const Unlimited int64 = -1

const (
	IntervalNone  = "none"
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// PlanInfo describes a plan for display and billing purposes.
type PlanInfo struct {
	ID                 Plan   `json:"id"`
	Name               string `json:"name"`
	Tier               Plan   `json:"tier"`
	Interval           string `json:"interval"`
	MonthlyGenerations int64  `json:"monthlyGenerations"`
}

// catalog is ordered by tier, monthly before yearly.
var catalog = []PlanInfo{
	{ID: PlanFree, Name: "Free", Tier: PlanFree, Interval: IntervalNone, MonthlyGenerations: 10},
	{ID: PlanPro, Name: "Pro", Tier: PlanPro, Interval: IntervalMonth, MonthlyGenerations: 100},
	{ID: PlanProYearly, Name: "Pro (yearly)", Tier: PlanPro, Interval: IntervalYear, MonthlyGenerations: 100},
	{ID: PlanBusiness, Name: "Business", Tier: PlanBusiness, Interval: IntervalMonth, MonthlyGenerations: 500},
	{ID: PlanBusinessYearly, Name: "Business (yearly)", Tier: PlanBusiness, Interval: IntervalYear, MonthlyGenerations: 500},
	{ID: PlanEnterprise, Name: "Enterprise", Tier: PlanEnterprise, Interval: IntervalMonth, MonthlyGenerations: Unlimited},
	{ID: PlanEnterpriseYearly, Name: "Enterprise (yearly)", Tier: PlanEnterprise, Interval: IntervalYear, MonthlyGenerations: Unlimited},
}

var tierRank = map[Plan]int{
	PlanFree:       0,
	PlanPro:        1,
	PlanBusiness:   2,
	PlanEnterprise: 3,
}

var featureLabels = map[Feature]string{
	FeatureAdvancedOptions: "Advanced options",
	FeatureCustomPersonas:  "Custom AI personas",
	FeatureBatchGeneration: "Batch generation",
	FeatureAnalytics:       "Analytics",
	FeatureAPIAccess:       "API access",
	FeatureSEOOptimization: "SEO optimization",
	FeatureImageGeneration: "Image generation",
	FeaturePremiumStyles:   "Premium styles",
	FeaturePremiumMoods:    "Premium moods",
}

// Catalog returns all plans ordered by tier.
func Catalog() []PlanInfo {
	out := make([]PlanInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Info returns catalog data for a plan. Unknown plans resolve to free.
func Info(plan Plan) PlanInfo {
	for _, p := range catalog {
		if p.ID == plan {
			return p
		}
	}
	return catalog[0]
}

// Rank orders plans by tier; billing intervals of the same tier rank equal.
func Rank(plan Plan) int {
	return tierRank[Info(plan).Tier]
}

// Label returns the user-facing name of a feature.
func Label(f Feature) string {
	if l, ok := featureLabels[f]; ok {
		return l
	}
	return string(f)
}

// MinimumTierFor returns the lowest monthly plan that enables the feature.
// It returns false when no plan enables it.
func MinimumTierFor(f Feature) (PlanInfo, bool) {
	for _, p := range catalog {
		if p.Interval == IntervalYear {
			continue
		}
		if enabled, _ := LimitsFor(p.ID).Flag(f); enabled {
			return p, true
		}
	}
	return PlanInfo{}, false
}
