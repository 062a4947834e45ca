package entitlements

import "fmt"

// Field names a bounded numeric input.
type Field string

const (
	FieldBatchVariations Field = "batchVariations"
	FieldCourseModules   Field = "courseModules"
)

// ValueEnforcement is the outcome of checking one numeric field against a plan.
type ValueEnforcement struct {
	EnforcedValue int    `json:"enforcedValue"`
	WasChanged    bool   `json:"wasChanged"`
	Reason        string `json:"reason,omitempty"`
}

// CanUseFeature reports whether the plan enables the named feature.
// Names that are not known flags are allowed.
func CanUseFeature(limits FeatureLimits, name string) bool {
	enabled, known := limits.Flag(Feature(name))
	if !known {
		return true
	}
	return enabled
}

// EnforceBatchVariations caps values above max and resets values below min to the default.
func EnforceBatchVariations(limits FeatureLimits, requested int) int {
	r := limits.BatchVariations
	switch {
	case requested > r.Max:
		return r.Max
	case requested < r.Min:
		return r.Default
	default:
		return requested
	}
}

// EnforceCourseModules returns the option closest to requested. On a tie the
// smaller option wins.
func EnforceCourseModules(limits FeatureLimits, requested int) int {
	opts := limits.CourseModules.Options
	if len(opts) == 0 {
		return limits.CourseModules.Default
	}
	// Options are strictly increasing. Values outside the range resolve to the
	// nearest end before any subtraction, so requested - o cannot overflow.
	if requested <= opts[0] {
		return opts[0]
	}
	if requested >= opts[len(opts)-1] {
		return opts[len(opts)-1]
	}
	best := opts[0]
	bestDist := absInt(requested - best)
	for _, o := range opts[1:] {
		if d := absInt(requested - o); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

// ValidateAndEnforceValue dispatches on field. Unknown fields pass through unchanged.
func ValidateAndEnforceValue(limits FeatureLimits, field Field, requested int) ValueEnforcement {
	var enforced int
	switch field {
	case FieldBatchVariations:
		enforced = EnforceBatchVariations(limits, requested)
	case FieldCourseModules:
		enforced = EnforceCourseModules(limits, requested)
	default:
		return ValueEnforcement{EnforcedValue: requested}
	}

	out := ValueEnforcement{EnforcedValue: enforced, WasChanged: enforced != requested}
	if !out.WasChanged {
		return out
	}
	switch field {
	case FieldBatchVariations:
		r := limits.BatchVariations
		if requested > r.Max {
			out.Reason = fmt.Sprintf("Maximum %d variations allowed on your plan", r.Max)
		} else {
			out.Reason = fmt.Sprintf("Minimum %d variation required, using default of %d", r.Min, r.Default)
		}
	case FieldCourseModules:
		out.Reason = fmt.Sprintf("Adjusted to closest available option: %d", enforced)
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
