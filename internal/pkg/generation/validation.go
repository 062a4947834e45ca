package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
	"github.com/ManuelReschke/CopyFox/internal/pkg/entitlements"
)

// ValidationResult is the aggregated outcome of validating one Request.
// EnforcedRequest is only set when IsValid is false.
type ValidationResult struct {
	IsValid         bool     `json:"isValid"`
	EnforcedRequest *Request `json:"enforcedRequest,omitempty"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	PlanLimitations []string `json:"planLimitations"`

	// Denied and Adjusted name the features and fields behind Errors and Warnings.
	Denied   []entitlements.Feature `json:"-"`
	Adjusted []entitlements.Field   `json:"-"`
}

type toggle struct {
	feature entitlements.Feature
	get     func(*Request) *bool
}

// toggles are checked in this order; errors are reported in the same order.
var toggles = []toggle{
	{feature: entitlements.FeatureAdvancedOptions, get: func(r *Request) *bool { return r.UseAdvancedOptions }},
	{feature: entitlements.FeatureImageGeneration, get: func(r *Request) *bool { return r.UseImageGeneration }},
	{feature: entitlements.FeatureSEOOptimization, get: func(r *Request) *bool { return r.UseSeoOptimization }},
	{feature: entitlements.FeatureCustomPersonas, get: func(r *Request) *bool { return r.UseCustomPersonas }},
}

// Validate checks req against the plan found in info. A missing subscription
// or plan id validates against the free plan.
func Validate(info billing.BillingInfo, req Request) ValidationResult {
	res, _ := Prepare(info, req)
	return res
}

// Prepare validates req and also returns the adjusted request that should be
// executed, whether or not the result is valid.
func Prepare(info billing.BillingInfo, req Request) (ValidationResult, Request) {
	plan := entitlements.NormalizePlan(info.PlanID())
	return validate(plan, entitlements.LimitsFor(plan), req)
}

// ValidateWithLimits validates req against explicit limits. plan is only used
// to name the plan in limitation notes.
func ValidateWithLimits(plan entitlements.Plan, limits entitlements.FeatureLimits, req Request) ValidationResult {
	res, _ := validate(plan, limits, req)
	return res
}

func validate(plan entitlements.Plan, limits entitlements.FeatureLimits, req Request) (ValidationResult, Request) {
	work := req.Clone()
	res := ValidationResult{
		Errors:          []string{},
		Warnings:        []string{},
		PlanLimitations: []string{},
	}

	if work.BatchVariations != nil {
		requested := *work.BatchVariations
		v := entitlements.ValidateAndEnforceValue(limits, entitlements.FieldBatchVariations, requested)
		if v.WasChanged {
			limit := limits.BatchVariations.Max
			res.Warnings = append(res.Warnings, fmt.Sprintf("Batch variations reduced from %d to %d (plan limit: %d)", requested, v.EnforcedValue, limit))
			res.PlanLimitations = append(res.PlanLimitations, fmt.Sprintf("Maximum %d variations per generation", limit))
			*work.BatchVariations = v.EnforcedValue
			res.Adjusted = append(res.Adjusted, entitlements.FieldBatchVariations)
		}
	}

	if work.CourseModules != nil {
		requested := *work.CourseModules
		v := entitlements.ValidateAndEnforceValue(limits, entitlements.FieldCourseModules, requested)
		if v.WasChanged {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Course modules adjusted from %d to %d (closest available option)", requested, v.EnforcedValue))
			res.PlanLimitations = append(res.PlanLimitations, fmt.Sprintf("%s plan supports %s course modules", entitlements.Info(plan).Name, joinInts(limits.CourseModules.Options)))
			*work.CourseModules = v.EnforcedValue
			res.Adjusted = append(res.Adjusted, entitlements.FieldCourseModules)
		}
	}

	for _, tg := range toggles {
		p := tg.get(&work)
		if p == nil || !*p {
			continue
		}
		if entitlements.CanUseFeature(limits, string(tg.feature)) {
			continue
		}
		*p = false
		deny(&res, tg.feature)
	}

	if work.Style != "" && IsPremiumStyle(work.Style) && !limits.PremiumStyles {
		work.Style = ""
		deny(&res, entitlements.FeaturePremiumStyles)
	}
	if work.Mood != "" && IsPremiumMood(work.Mood) && !limits.PremiumMoods {
		work.Mood = ""
		deny(&res, entitlements.FeaturePremiumMoods)
	}

	res.IsValid = len(res.Errors) == 0
	if !res.IsValid {
		enforced := work.Clone()
		res.EnforcedRequest = &enforced
	}
	return res, work
}

func deny(res *ValidationResult, f entitlements.Feature) {
	res.Denied = append(res.Denied, f)
	res.Errors = append(res.Errors, fmt.Sprintf("%s is not available for your plan", entitlements.Label(f)))
	if tier, ok := entitlements.MinimumTierFor(f); ok {
		res.PlanLimitations = append(res.PlanLimitations, fmt.Sprintf("%s requires the %s plan or higher", entitlements.Label(f), tier.Name))
	} else {
		res.PlanLimitations = append(res.PlanLimitations, fmt.Sprintf("%s is not offered on any plan", entitlements.Label(f)))
	}
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
