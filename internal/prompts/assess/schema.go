package assess

import (
	"encoding/json"

	"github.com/labelwise/labelwise/internal/providers"
	"github.com/labelwise/labelwise/internal/types"
)

// OutputSchema is the JSON schema for the assessment reply.
var OutputSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "food_safety_assessment",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"product_summary": map[string]any{
					"type":        "string",
					"description": "One or two sentences describing the product",
				},
				"nutritional_analysis": map[string]any{
					"type":        "string",
					"description": "Narrative analysis of the label's nutrition values, may discuss weight-goal fit",
				},
				"assessment": map[string]any{
					"type": "string",
					"enum": []string{
						string(types.VerdictSafe),
						string(types.VerdictModerate),
						string(types.VerdictNotSafe),
					},
					"description": "Safety verdict based only on health conditions and allergens",
				},
				"explanation": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Why the assessment was chosen",
				},
			},
			"required": []string{
				"product_summary",
				"nutritional_analysis",
				"assessment",
				"explanation",
			},
			"additionalProperties": false,
		},
	},
}

// BuildChatRequest builds the chat request for a validated assessment
// request and wires in the structured output schema.
func BuildChatRequest(req types.AssessmentRequest) (*providers.ChatRequest, error) {
	user, err := UserPrompt(req)
	if err != nil {
		return nil, err
	}
	return &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: user},
		},
		ResponseFormat: ResponseFormat(),
		Temperature:    0.1,
		MaxTokens:      1024,
	}, nil
}

// ResponseFormat returns the structured output format for the stage.
func ResponseFormat() *providers.ResponseFormat {
	jsonSchema, _ := json.Marshal(OutputSchema["json_schema"])
	return &providers.ResponseFormat{
		Type:       "json_schema",
		JSONSchema: jsonSchema,
	}
}

// ParseResult parses validated JSON into an AssessmentResult.
func ParseResult(parsed json.RawMessage) (*types.AssessmentResult, error) {
	var result types.AssessmentResult
	if err := json.Unmarshal(parsed, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
