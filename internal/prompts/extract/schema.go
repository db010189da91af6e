package extract

import (
	"encoding/json"

	"github.com/labelwise/labelwise/internal/providers"
	"github.com/labelwise/labelwise/internal/types"
)

// OutputSchema is the JSON schema for label extraction output.
// Nutrition values are nullable: null means "not printed on the label",
// never zero.
var OutputSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "food_label_extraction",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"product_name": map[string]any{
					"type":        "string",
					"description": "Product name as printed on the label",
				},
				"ingredients": map[string]any{
					"type":        "string",
					"description": "Comma-separated ingredient list in printed order, empty if none visible",
				},
				"raw_text": map[string]any{
					"type":        "string",
					"description": "All legible label text, transcribed",
				},
				"serving_size_g": map[string]any{
					"type":        []string{"number", "null"},
					"minimum":     0,
					"description": "Serving size in grams, null if not printed",
				},
				"calories": map[string]any{
					"type":        []string{"number", "null"},
					"minimum":     0,
					"description": "Calories per serving, null if not printed",
				},
				"fat_g": map[string]any{
					"type":        []string{"number", "null"},
					"minimum":     0,
					"description": "Fat in grams per serving, null if not printed",
				},
				"sugar_g": map[string]any{
					"type":        []string{"number", "null"},
					"minimum":     0,
					"description": "Sugar in grams per serving, null if not printed",
				},
				"sodium_mg": map[string]any{
					"type":        []string{"number", "null"},
					"minimum":     0,
					"description": "Sodium in milligrams per serving, null if not printed",
				},
			},
			"required": []string{
				"product_name",
				"ingredients",
				"raw_text",
				"serving_size_g",
				"calories",
				"fat_g",
				"sugar_g",
				"sodium_mg",
			},
			"additionalProperties": false,
		},
	},
}

// BuildChatRequest builds the vision chat request for one label image.
func BuildChatRequest(image []byte) *providers.ChatRequest {
	return &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: UserPrompt(), Images: [][]byte{image}},
		},
		ResponseFormat: ResponseFormat(),
		Temperature:    0.0,
		MaxTokens:      2048,
	}
}

// ResponseFormat returns the structured output format for the stage.
func ResponseFormat() *providers.ResponseFormat {
	jsonSchema, _ := json.Marshal(OutputSchema["json_schema"])
	return &providers.ResponseFormat{
		Type:       "json_schema",
		JSONSchema: jsonSchema,
	}
}

// ParseResult parses validated JSON into a LabelExtraction.
func ParseResult(parsed json.RawMessage) (*types.LabelExtraction, error) {
	var result types.LabelExtraction
	if err := json.Unmarshal(parsed, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
