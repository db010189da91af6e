package types

// Condition is an enumerated health condition tag on a profile.
type Condition string

const (
	ConditionDiabetes           Condition = "diabetes"
	ConditionHighBloodPressure  Condition = "high_blood_pressure"
	ConditionAllergies          Condition = "allergies"
	ConditionCeliac             Condition = "celiac"
	ConditionLactoseIntolerance Condition = "lactose_intolerance"
	ConditionKidneyDisease      Condition = "kidney_disease"
	ConditionHeartDisease       Condition = "heart_disease"
)

// KnownConditions lists every valid condition tag in canonical order.
// Prompt rendering iterates this order so output stays deterministic.
var KnownConditions = []Condition{
	ConditionDiabetes,
	ConditionHighBloodPressure,
	ConditionAllergies,
	ConditionCeliac,
	ConditionLactoseIntolerance,
	ConditionKidneyDisease,
	ConditionHeartDisease,
}

// WeightGoal is the user's enumerated weight goal.
type WeightGoal string

const (
	WeightGoalLose     WeightGoal = "lose weight"
	WeightGoalMaintain WeightGoal = "maintain weight"
	WeightGoalGain     WeightGoal = "gain weight"
)

// HealthProfile is the user-declared health data used to personalize
// assessments. It is owned by the caller and passed by value into the
// assessment core; the core never mutates it.
type HealthProfile struct {
	Conditions         []Condition `json:"conditions"`
	DetailedConditions string      `json:"detailed_conditions,omitempty"`
	WeightGoal         WeightGoal  `json:"weight_goal"`
	Gender             string      `json:"gender,omitempty"`
	WeightKg           *float64    `json:"weight_kg,omitempty"`
}

// HasCondition reports whether the profile carries the given tag.
func (p HealthProfile) HasCondition(c Condition) bool {
	for _, have := range p.Conditions {
		if have == c {
			return true
		}
	}
	return false
}

func validCondition(c Condition) bool {
	for _, known := range KnownConditions {
		if c == known {
			return true
		}
	}
	return false
}

func validWeightGoal(g WeightGoal) bool {
	switch g {
	case WeightGoalLose, WeightGoalMaintain, WeightGoalGain:
		return true
	}
	return false
}
