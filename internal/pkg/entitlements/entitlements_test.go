package entitlements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTable(t *testing.T) {
	require.NoError(t, CheckTable())
}

func TestLimitsFor_UnknownPlanFallsBackToFree(t *testing.T) {
	free := LimitsFor(PlanFree)
	assert.Equal(t, free, LimitsFor(""))
	assert.Equal(t, free, LimitsFor("platinum"))
}

func TestLimitsFor_ReturnsCopyOfOptions(t *testing.T) {
	l := LimitsFor(PlanFree)
	l.CourseModules.Options[0] = 99
	assert.Equal(t, []int{3, 5}, LimitsFor(PlanFree).CourseModules.Options)
}

func TestLimitsFor_FreePlan(t *testing.T) {
	l := LimitsFor(PlanFree)
	assert.Equal(t, Range{Min: 1, Max: 2, Default: 1}, l.BatchVariations)
	assert.Equal(t, []int{3, 5}, l.CourseModules.Options)
	for _, f := range Features {
		enabled, known := l.Flag(f)
		assert.True(t, known)
		assert.False(t, enabled, "free plan should not enable %s", f)
	}
}

func TestLimitsFor_ProYearlyKeepsShippedBatchGenerationFlag(t *testing.T) {
	assert.True(t, LimitsFor(PlanPro).BatchGeneration)
	assert.False(t, LimitsFor(PlanProYearly).BatchGeneration)
	assert.True(t, LimitsFor(PlanProYearly).SEOOptimization)
}

func TestParsePlan(t *testing.T) {
	tests := []struct {
		in    string
		want  Plan
		known bool
	}{
		{in: "free", want: PlanFree, known: true},
		{in: " Business_Yearly ", want: PlanBusinessYearly, known: true},
		{in: "ENTERPRISE", want: PlanEnterprise, known: true},
		{in: "premium", want: Plan("premium"), known: false},
		{in: "", want: Plan(""), known: false},
	}

	for _, tt := range tests {
		got, ok := ParsePlan(tt.in)
		if got != tt.want || ok != tt.known {
			t.Fatalf("ParsePlan(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.known)
		}
	}
}

func TestNormalizePlan(t *testing.T) {
	assert.Equal(t, PlanPro, NormalizePlan("PRO"))
	assert.Equal(t, PlanFree, NormalizePlan("gold"))
}

func TestRank(t *testing.T) {
	assert.Less(t, Rank(PlanFree), Rank(PlanPro))
	assert.Less(t, Rank(PlanPro), Rank(PlanBusiness))
	assert.Less(t, Rank(PlanBusiness), Rank(PlanEnterprise))
	assert.Equal(t, Rank(PlanPro), Rank(PlanProYearly))
	assert.Equal(t, Rank(PlanFree), Rank("unknown"))
}

func TestCatalogCoversEveryPlan(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, len(planLimits))
	for _, p := range cat {
		_, ok := planLimits[p.ID]
		assert.True(t, ok, "catalog entry %s has no limits", p.ID)
	}
	assert.Equal(t, Unlimited, Info(PlanEnterpriseYearly).MonthlyGenerations)
	assert.Equal(t, "Free", Info("nope").Name)
}

func TestMinimumTierFor(t *testing.T) {
	tests := []struct {
		feature Feature
		want    Plan
	}{
		{feature: FeatureImageGeneration, want: PlanPro},
		{feature: FeatureCustomPersonas, want: PlanBusiness},
		{feature: FeatureAPIAccess, want: PlanEnterprise},
	}
	for _, tt := range tests {
		got, ok := MinimumTierFor(tt.feature)
		require.True(t, ok)
		assert.Equal(t, tt.want, got.ID, tt.feature)
	}

	_, ok := MinimumTierFor(Feature("teleport"))
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Custom AI personas", Label(FeatureCustomPersonas))
	assert.Equal(t, "SEO optimization", Label(FeatureSEOOptimization))
	assert.Equal(t, "mystery", Label(Feature("mystery")))
}
