package types

// LabelExtraction is structured product and nutrition data for one food
// label. It comes either from the vision extraction stage or from
// manually entered form fields; both paths go through ValidateInput
// before reaching the prompt renderer.
type LabelExtraction struct {
	ProductName string `json:"product_name"`
	Ingredients string `json:"ingredients"`

	// Raw OCR text when the label came from an image scan. Optional;
	// included verbatim in the assessment prompt when present.
	RawText string `json:"raw_text,omitempty"`

	// Nutrition values as printed on the label. Pointers distinguish
	// "not on the label" from zero.
	ServingSizeG *float64 `json:"serving_size_g,omitempty"`
	Calories     *float64 `json:"calories,omitempty"`
	FatG         *float64 `json:"fat_g,omitempty"`
	SugarG       *float64 `json:"sugar_g,omitempty"`
	SodiumMg     *float64 `json:"sodium_mg,omitempty"`
}

// AssessmentRequest is the validated unit sent to the prompt renderer:
// one health profile plus one label extraction.
type AssessmentRequest struct {
	Profile HealthProfile   `json:"profile"`
	Label   LabelExtraction `json:"label"`
}
