package models

// Condition is one tag from the fixed set users can select at signup.
type Condition string

const (
	ConditionADHD           Condition = "ADHD"
	ConditionAutism         Condition = "Autism"
	ConditionAlzheimers     Condition = "Alzheimer's"
	ConditionAnxiety        Condition = "Anxiety"
	ConditionStrokeRecovery Condition = "Stroke Recovery"
	ConditionLazyEyes       Condition = "Lazy Eyes"
	ConditionOther          Condition = "other"
)

// validConditions is read-only after init; callers get copies.
var validConditions = []Condition{
	ConditionADHD,
	ConditionAutism,
	ConditionAlzheimers,
	ConditionAnxiety,
	ConditionStrokeRecovery,
	ConditionLazyEyes,
	ConditionOther,
}

var conditionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(validConditions))
	for _, c := range validConditions {
		set[string(c)] = struct{}{}
	}
	return set
}()

// Conditions returns the enumeration in its defined order.
func Conditions() []string {
	out := make([]string, len(validConditions))
	for i, c := range validConditions {
		out[i] = string(c)
	}
	return out
}

func IsValidCondition(tag string) bool {
	_, ok := conditionSet[tag]
	return ok
}

// InvalidConditions returns the tags that are not part of the enumeration,
// in request order. Duplicates are kept.
func InvalidConditions(tags []string) []string {
	var invalid []string
	for _, tag := range tags {
		if !IsValidCondition(tag) {
			invalid = append(invalid, tag)
		}
	}
	return invalid
}
