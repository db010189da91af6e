package types

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid field in a validation failure.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every offending field in a request. A request
// is either accepted whole or rejected whole; there is no partial
// acceptance.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Path, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the error names the given field path.
func (e *ValidationError) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(path, msg string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateInput checks an AssessmentRequest before it may reach the
// prompt renderer: required fields present, enums in range, nutrition
// values non-negative. It returns a *ValidationError naming every bad
// field, or nil.
func ValidateInput(req AssessmentRequest) error {
	verr := &ValidationError{}

	if !validWeightGoal(req.Profile.WeightGoal) {
		verr.add("profile.weight_goal", fmt.Sprintf("must be one of %q, %q, %q", WeightGoalLose, WeightGoalMaintain, WeightGoalGain))
	}
	for i, c := range req.Profile.Conditions {
		if !validCondition(c) {
			verr.add(fmt.Sprintf("profile.conditions[%d]", i), fmt.Sprintf("unknown condition %q", c))
		}
	}
	if req.Profile.WeightKg != nil && *req.Profile.WeightKg <= 0 {
		verr.add("profile.weight_kg", "must be positive")
	}

	if strings.TrimSpace(req.Label.ProductName) == "" {
		verr.add("label.product_name", "is required")
	}
	if strings.TrimSpace(req.Label.Ingredients) == "" && strings.TrimSpace(req.Label.RawText) == "" {
		verr.add("label.ingredients", "ingredients or raw label text is required")
	}

	checkNonNegative(verr, "label.serving_size_g", req.Label.ServingSizeG)
	checkNonNegative(verr, "label.calories", req.Label.Calories)
	checkNonNegative(verr, "label.fat_g", req.Label.FatG)
	checkNonNegative(verr, "label.sugar_g", req.Label.SugarG)
	checkNonNegative(verr, "label.sodium_mg", req.Label.SodiumMg)

	return verr.orNil()
}

// ValidateProfile checks a stored health profile on its own, used by
// the profile endpoints before persisting.
func ValidateProfile(p HealthProfile) error {
	verr := &ValidationError{}
	if !validWeightGoal(p.WeightGoal) {
		verr.add("weight_goal", fmt.Sprintf("must be one of %q, %q, %q", WeightGoalLose, WeightGoalMaintain, WeightGoalGain))
	}
	for i, c := range p.Conditions {
		if !validCondition(c) {
			verr.add(fmt.Sprintf("conditions[%d]", i), fmt.Sprintf("unknown condition %q", c))
		}
	}
	if p.WeightKg != nil && *p.WeightKg <= 0 {
		verr.add("weight_kg", "must be positive")
	}
	return verr.orNil()
}

func checkNonNegative(verr *ValidationError, path string, v *float64) {
	if v != nil && *v < 0 {
		verr.add(path, "must be non-negative")
	}
}
