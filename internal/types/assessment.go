package types

import "time"

// Verdict is the three-way safety verdict.
type Verdict string

const (
	VerdictSafe     Verdict = "Safe to Eat"
	VerdictModerate Verdict = "Consume in Moderation"
	VerdictNotSafe  Verdict = "Not Safe"
)

// Verdicts lists the only values the model is allowed to return.
var Verdicts = []Verdict{VerdictSafe, VerdictModerate, VerdictNotSafe}

// ValidVerdict reports whether v is one of the three enumerated verdicts.
func ValidVerdict(v Verdict) bool {
	for _, known := range Verdicts {
		if v == known {
			return true
		}
	}
	return false
}

// AssessmentResult is the typed, schema-validated reply from the
// assessment stage. Assessment and Explanation are always present;
// the summary and analysis narratives come from the extended output
// schema.
type AssessmentResult struct {
	ProductSummary      string  `json:"product_summary"`
	NutritionalAnalysis string  `json:"nutritional_analysis"`
	Assessment          Verdict `json:"assessment"`
	Explanation         string  `json:"explanation"`
}

// ScanRecord is a persisted assessment in a user's scan history. The
// core hands back an AssessmentResult; the storage layer attaches the
// identifier, owner, and timestamp.
type ScanRecord struct {
	ID        string           `json:"id"`
	Owner     string           `json:"owner"`
	CreatedAt time.Time        `json:"created_at"`
	Label     LabelExtraction  `json:"label"`
	Result    AssessmentResult `json:"result"`
}
