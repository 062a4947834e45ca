package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
)

func infoFor(plan string) billing.BillingInfo {
	return billing.BillingInfo{Subscription: &billing.SubscriptionInfo{PlanID: plan}}
}

func TestValidate_FreeBatchVariationsCapped(t *testing.T) {
	res := Validate(infoFor("free"), Request{ContentType: "blog", BatchVariations: Int(10)})

	assert.True(t, res.IsValid)
	assert.Nil(t, res.EnforcedRequest)
	assert.Equal(t, []string{"Batch variations reduced from 10 to 2 (plan limit: 2)"}, res.Warnings)
	assert.Equal(t, []string{"Maximum 2 variations per generation"}, res.PlanLimitations)
	assert.Empty(t, res.Errors)
}

func TestValidate_FreeCourseModulesNearestOption(t *testing.T) {
	res := Validate(infoFor("free"), Request{ContentType: "course", CourseModules: Int(7)})

	assert.True(t, res.IsValid)
	assert.Equal(t, []string{"Course modules adjusted from 7 to 5 (closest available option)"}, res.Warnings)
	assert.Equal(t, []string{"Free plan supports 3, 5 course modules"}, res.PlanLimitations)
}

func TestValidate_FreeBatchVariationsBelowMin(t *testing.T) {
	res := Validate(infoFor("free"), Request{ContentType: "blog", BatchVariations: Int(0)})

	assert.True(t, res.IsValid)
	assert.Equal(t, []string{"Batch variations reduced from 0 to 1 (plan limit: 2)"}, res.Warnings)
}

func TestValidate_FreeImageGenerationDenied(t *testing.T) {
	req := Request{ContentType: "social", UseImageGeneration: Bool(true)}
	res := Validate(infoFor("free"), req)

	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"Image generation is not available for your plan"}, res.Errors)
	assert.Equal(t, []string{"Image generation requires the Pro plan or higher"}, res.PlanLimitations)
	require.NotNil(t, res.EnforcedRequest)
	require.NotNil(t, res.EnforcedRequest.UseImageGeneration)
	assert.False(t, *res.EnforcedRequest.UseImageGeneration)
	assert.True(t, *req.UseImageGeneration, "caller's request must not be mutated")
}

func TestValidate_BusinessWithinLimits(t *testing.T) {
	res := Validate(infoFor("business"), Request{
		ContentType:       "course",
		BatchVariations:   Int(3),
		CourseModules:     Int(7),
		UseCustomPersonas: Bool(true),
	})

	assert.True(t, res.IsValid)
	assert.Nil(t, res.EnforcedRequest)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.PlanLimitations)
}

func TestValidate_ProYearlySeoAllowed(t *testing.T) {
	res := Validate(infoFor("pro_yearly"), Request{ContentType: "blog", UseSeoOptimization: Bool(true)})

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.False(t, entitlements.LimitsFor(entitlements.PlanProYearly).BatchGeneration)
}

func TestValidate_MissingSubscriptionIsFree(t *testing.T) {
	res := Validate(billing.BillingInfo{}, Request{ContentType: "blog", BatchVariations: Int(3)})
	assert.Equal(t, []string{"Batch variations reduced from 3 to 2 (plan limit: 2)"}, res.Warnings)

	res = Validate(infoFor("platinum"), Request{ContentType: "blog", BatchVariations: Int(3)})
	assert.Len(t, res.Warnings, 1)
}

func TestValidate_FalseTogglesAreNotChecked(t *testing.T) {
	res := Validate(infoFor("free"), Request{
		ContentType:        "blog",
		UseAdvancedOptions: Bool(false),
		UseImageGeneration: Bool(false),
	})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
}

func TestValidate_AggregatesEverythingInOrder(t *testing.T) {
	res := Validate(infoFor("free"), Request{
		ContentType:        "course",
		BatchVariations:    Int(9),
		CourseModules:      Int(4),
		UseAdvancedOptions: Bool(true),
		UseImageGeneration: Bool(true),
		UseSeoOptimization: Bool(true),
		UseCustomPersonas:  Bool(true),
	})

	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		"Batch variations reduced from 9 to 2 (plan limit: 2)",
		"Course modules adjusted from 4 to 3 (closest available option)",
	}, res.Warnings)
	assert.Equal(t, []string{
		"Advanced options is not available for your plan",
		"Image generation is not available for your plan",
		"SEO optimization is not available for your plan",
		"Custom AI personas is not available for your plan",
	}, res.Errors)
	assert.Equal(t, []string{
		"Maximum 2 variations per generation",
		"Free plan supports 3, 5 course modules",
		"Advanced options requires the Pro plan or higher",
		"Image generation requires the Pro plan or higher",
		"SEO optimization requires the Pro plan or higher",
		"Custom AI personas requires the Business plan or higher",
	}, res.PlanLimitations)

	assert.Equal(t, []entitlements.Field{entitlements.FieldBatchVariations, entitlements.FieldCourseModules}, res.Adjusted)
	assert.Len(t, res.Denied, 4)

	enforced := res.EnforcedRequest
	require.NotNil(t, enforced)
	assert.Equal(t, 2, *enforced.BatchVariations)
	assert.Equal(t, 3, *enforced.CourseModules)
	assert.False(t, *enforced.UseAdvancedOptions)
	assert.False(t, *enforced.UseImageGeneration)
	assert.False(t, *enforced.UseSeoOptimization)
	assert.False(t, *enforced.UseCustomPersonas)
}

func TestValidate_PremiumStyleAndMood(t *testing.T) {
	res := Validate(infoFor("free"), Request{ContentType: "ad", Style: "Cinematic", Mood: "dramatic"})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		"Premium styles is not available for your plan",
		"Premium moods is not available for your plan",
	}, res.Errors)
	require.NotNil(t, res.EnforcedRequest)
	assert.Empty(t, res.EnforcedRequest.Style)
	assert.Empty(t, res.EnforcedRequest.Mood)

	res = Validate(infoFor("free"), Request{ContentType: "ad", Style: "casual", Mood: "friendly"})
	assert.True(t, res.IsValid)

	res = Validate(infoFor("pro"), Request{ContentType: "ad", Style: "cinematic", Mood: "dramatic"})
	assert.True(t, res.IsValid)
}

func TestProperty_ValidateInvariants(t *testing.T) {
	plans := []string{"", "free", "pro", "pro_yearly", "business", "business_yearly", "enterprise", "enterprise_yearly", "bogus"}
	optInt := func(t *rapid.T, label string) *int {
		if !rapid.Bool().Draw(t, label+"Set") {
			return nil
		}
		return Int(rapid.IntRange(-50, 50).Draw(t, label))
	}
	optBool := func(t *rapid.T, label string) *bool {
		if !rapid.Bool().Draw(t, label+"Set") {
			return nil
		}
		return Bool(rapid.Bool().Draw(t, label))
	}

	rapid.Check(t, func(t *rapid.T) {
		plan := rapid.SampledFrom(plans).Draw(t, "plan")
		req := Request{
			ContentType:        "blog",
			BatchVariations:    optInt(t, "batch"),
			CourseModules:      optInt(t, "modules"),
			UseAdvancedOptions: optBool(t, "advanced"),
			UseImageGeneration: optBool(t, "image"),
			UseSeoOptimization: optBool(t, "seo"),
			UseCustomPersonas:  optBool(t, "personas"),
		}
		res := Validate(infoFor(plan), req)

		if res.IsValid != (len(res.Errors) == 0) {
			t.Fatalf("isValid %v with %d errors", res.IsValid, len(res.Errors))
		}
		if res.IsValid != (res.EnforcedRequest == nil) {
			t.Fatalf("enforced request presence must mirror invalidity")
		}

		limits := entitlements.LimitsFor(entitlements.NormalizePlan(plan))
		changed := false
		if req.BatchVariations != nil && entitlements.EnforceBatchVariations(limits, *req.BatchVariations) != *req.BatchVariations {
			changed = true
		}
		if req.CourseModules != nil && entitlements.EnforceCourseModules(limits, *req.CourseModules) != *req.CourseModules {
			changed = true
		}
		if changed && len(res.Warnings) == 0 {
			t.Fatalf("numeric adjustment without warning")
		}

		numericOnly := Request{ContentType: req.ContentType, BatchVariations: req.BatchVariations, CourseModules: req.CourseModules}
		if !Validate(infoFor(plan), numericOnly).IsValid {
			t.Fatalf("numeric adjustments alone must not invalidate a request")
		}
	})
}

func TestPrepare_ReturnsAdjustedRequestWhenValid(t *testing.T) {
	res, run := Prepare(infoFor("pro"), Request{ContentType: "course", BatchVariations: Int(8), CourseModules: Int(6)})

	assert.True(t, res.IsValid)
	assert.Nil(t, res.EnforcedRequest)
	assert.Equal(t, 3, *run.BatchVariations)
	assert.Equal(t, 5, *run.CourseModules)
}
