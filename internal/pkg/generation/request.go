package generation

import "strings"

// Request is a single generation attempt. Nil fields were not supplied by the
// caller and are not validated.
type Request struct {
	ContentType        string `json:"contentType" validate:"required,max=64"`
	BatchVariations    *int   `json:"batchVariations,omitempty"`
	CourseModules      *int   `json:"courseModules,omitempty"`
	UseAdvancedOptions *bool  `json:"useAdvancedOptions,omitempty"`
	UseImageGeneration *bool  `json:"useImageGeneration,omitempty"`
	UseSeoOptimization *bool  `json:"useSeoOptimization,omitempty"`
	UseCustomPersonas  *bool  `json:"useCustomPersonas,omitempty"`
	Style              string `json:"style,omitempty" validate:"max=64"`
	Mood               string `json:"mood,omitempty" validate:"max=64"`
}

// Clone returns a deep copy so the working copy never aliases the caller's pointers.
func (r Request) Clone() Request {
	out := r
	out.BatchVariations = cloneInt(r.BatchVariations)
	out.CourseModules = cloneInt(r.CourseModules)
	out.UseAdvancedOptions = cloneBool(r.UseAdvancedOptions)
	out.UseImageGeneration = cloneBool(r.UseImageGeneration)
	out.UseSeoOptimization = cloneBool(r.UseSeoOptimization)
	out.UseCustomPersonas = cloneBool(r.UseCustomPersonas)
	return out
}

// Int returns a pointer for an optional numeric field.
func Int(v int) *int { return &v }

// Bool returns a pointer for an optional toggle.
func Bool(v bool) *bool { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var premiumStyles = map[string]bool{
	"cinematic":    true,
	"editorial":    true,
	"luxury":       true,
	"storytelling": true,
}

var premiumMoods = map[string]bool{
	"dramatic":      true,
	"inspirational": true,
	"mysterious":    true,
	"nostalgic":     true,
}

// IsPremiumStyle reports whether a writing style is gated behind premiumStyles.
func IsPremiumStyle(style string) bool {
	return premiumStyles[strings.ToLower(strings.TrimSpace(style))]
}

// IsPremiumMood reports whether a mood is gated behind premiumMoods.
func IsPremiumMood(mood string) bool {
	return premiumMoods[strings.ToLower(strings.TrimSpace(mood))]
}
