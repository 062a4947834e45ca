package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
)

func TestUpgradeSuggestion(t *testing.T) {
	tests := []struct {
		name     string
		plan     entitlements.Plan
		features []string
		want     Suggestion
	}{
		{
			name:     "nothing missing",
			plan:     entitlements.PlanBusiness,
			features: []string{"customPersonas", "analytics"},
			want:     Suggestion{MissingFeatures: []string{}},
		},
		{
			name:     "api access points to enterprise",
			plan:     entitlements.PlanBusiness,
			features: []string{"apiAccess"},
			want:     Suggestion{ShouldUpgrade: true, RecommendedPlan: "enterprise", MissingFeatures: []string{"apiAccess"}},
		},
		{
			name:     "batch generation points to enterprise",
			plan:     entitlements.PlanProYearly,
			features: []string{"seoOptimization", "batchGeneration"},
			want:     Suggestion{ShouldUpgrade: true, RecommendedPlan: "enterprise", MissingFeatures: []string{"batchGeneration"}},
		},
		{
			name:     "other features point to pro",
			plan:     entitlements.PlanFree,
			features: []string{"imageGeneration", "seoOptimization", "notAFeature"},
			want:     Suggestion{ShouldUpgrade: true, RecommendedPlan: "pro", MissingFeatures: []string{"imageGeneration", "seoOptimization"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpgradeSuggestion(entitlements.LimitsFor(tt.plan), tt.features)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanUserGenerate(t *testing.T) {
	assert.Equal(t, GenerateAllowance{CanGenerate: true, PlanLimit: 10}, CanUserGenerate(entitlements.PlanFree))
	assert.Equal(t, GenerateAllowance{CanGenerate: true, PlanLimit: 500}, CanUserGenerate(entitlements.PlanBusinessYearly))
	assert.Equal(t, GenerateAllowance{CanGenerate: true, PlanLimit: entitlements.Unlimited}, CanUserGenerate(entitlements.PlanEnterprise))
	assert.Equal(t, GenerateAllowance{CanGenerate: true, PlanLimit: 10}, CanUserGenerate("unknown"))
}

func TestFormatValidationErrors(t *testing.T) {
	both := ValidationResult{
		Errors:   []string{"Image generation is not available for your plan"},
		Warnings: []string{"Batch variations reduced from 10 to 2 (plan limit: 2)"},
	}
	assert.Equal(t, Message{
		Title:      "Upgrade required",
		Message:    "Image generation is not available for your plan",
		ActionText: "View plans",
		ActionURL:  "/pricing",
	}, FormatValidationErrors(both))

	warnOnly := ValidationResult{IsValid: true, Warnings: []string{"a", "b"}}
	assert.Equal(t, Message{Title: "Request adjusted", Message: "a. b"}, FormatValidationErrors(warnOnly))

	clean := ValidationResult{IsValid: true}
	assert.Equal(t, "Ready to generate", FormatValidationErrors(clean).Title)
	assert.Empty(t, FormatValidationErrors(clean).ActionURL)
}
