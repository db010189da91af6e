package assess

import (
	"strings"
	"testing"

	"github.com/labelwise/labelwise/internal/prompts"
	"github.com/labelwise/labelwise/internal/types"
)

func floatPtr(v float64) *float64 { return &v }

func diabeticRequest() types.AssessmentRequest {
	return types.AssessmentRequest{
		Profile: types.HealthProfile{
			Conditions: []types.Condition{types.ConditionDiabetes},
			WeightGoal: types.WeightGoalLose,
			WeightKg:   floatPtr(82.5),
		},
		Label: types.LabelExtraction{
			ProductName: "Choco Crunch Cereal",
			Ingredients: "whole grain oats, sugar, cocoa",
			SugarG:      floatPtr(24),
			Calories:    floatPtr(210),
		},
	}
}

func TestUserPrompt_Deterministic(t *testing.T) {
	req := diabeticRequest()

	first, err := UserPrompt(req)
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}
	second, err := UserPrompt(req)
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}
	if first != second {
		t.Error("same request rendered to different prompts")
	}

	// Condition order must not affect the rendered text
	reordered := req
	reordered.Profile.Conditions = []types.Condition{
		types.ConditionAllergies,
		types.ConditionDiabetes,
	}
	canonical := req
	canonical.Profile.Conditions = []types.Condition{
		types.ConditionDiabetes,
		types.ConditionAllergies,
	}

	a, err := UserPrompt(reordered)
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}
	b, err := UserPrompt(canonical)
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}
	if a != b {
		t.Error("condition order changed the rendered prompt")
	}
}

func TestUserPrompt_MilkAllergy(t *testing.T) {
	req := types.AssessmentRequest{
		Profile: types.HealthProfile{
			Conditions:         []types.Condition{types.ConditionAllergies},
			DetailedConditions: "allergic to milk",
			WeightGoal:         types.WeightGoalMaintain,
		},
		Label: types.LabelExtraction{
			ProductName: "Choco Wafers",
			Ingredients: "milk, eggs, wheat",
		},
	}

	got, err := UserPrompt(req)
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}

	// Both sides of the conflict must reach the model verbatim
	for _, want := range []string{
		"conditions: allergies",
		"detailed conditions: allergic to milk",
		"ingredients: milk, eggs, wheat",
		"Choco Wafers",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestUserPrompt_NoConditions(t *testing.T) {
	req := types.AssessmentRequest{
		Profile: types.HealthProfile{
			WeightGoal: types.WeightGoalMaintain,
		},
		Label: types.LabelExtraction{
			ProductName: "Chicken Rice Bowl",
			Ingredients: "chicken, rice, vegetables",
			Calories:    floatPtr(300),
		},
	}

	got, err := UserPrompt(req)
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}

	if !strings.Contains(got, "conditions: none declared") {
		t.Errorf("prompt does not state that no conditions are declared:\n%s", got)
	}
	if strings.Contains(got, "detailed conditions") {
		t.Error("empty detailed conditions rendered a line")
	}
	if !strings.Contains(got, "calories: 300") {
		t.Errorf("prompt missing calories:\n%s", got)
	}
}

func TestUserPrompt_OmitsAbsentNutrition(t *testing.T) {
	req := diabeticRequest()
	req.Label.SugarG = nil
	req.Label.Calories = nil

	got, err := UserPrompt(req)
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}

	// Null means "not printed on the label" and must not render as zero
	if strings.Contains(got, "- sugar:") || strings.Contains(got, "- calories:") {
		t.Errorf("absent nutrition values rendered:\n%s", got)
	}
}

func TestFormatOptional(t *testing.T) {
	if got := formatOptional(nil); got != "" {
		t.Errorf("formatOptional(nil) = %q, want empty", got)
	}
	if got := formatOptional(floatPtr(24)); got != "24" {
		t.Errorf("formatOptional(24) = %q, want 24", got)
	}
	if got := formatOptional(floatPtr(82.5)); got != "82.5" {
		t.Errorf("formatOptional(82.5) = %q, want 82.5", got)
	}
}

func TestRegisterPrompts(t *testing.T) {
	r := prompts.NewResolver(nil)
	RegisterPrompts(r)

	system, err := r.Get(SystemPromptKey)
	if err != nil {
		t.Fatalf("system prompt not registered: %v", err)
	}
	if system.Text == "" || system.Hash == "" {
		t.Error("system prompt registered without text or hash")
	}

	user, err := r.Get(UserPromptKey)
	if err != nil {
		t.Fatalf("user prompt not registered: %v", err)
	}
	if user.Hash != UserPromptHash() {
		t.Errorf("registered hash = %q, want %q", user.Hash, UserPromptHash())
	}
	if len(user.Variables) == 0 {
		t.Error("user prompt template has no extracted variables")
	}
}

func TestBuildChatRequest(t *testing.T) {
	chatReq, err := BuildChatRequest(diabeticRequest())
	if err != nil {
		t.Fatalf("BuildChatRequest() error = %v", err)
	}

	if len(chatReq.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(chatReq.Messages))
	}
	if chatReq.Messages[0].Role != "system" || chatReq.Messages[0].Content == "" {
		t.Error("missing system message")
	}
	if !strings.Contains(chatReq.Messages[1].Content, "Choco Crunch Cereal") {
		t.Error("user message missing label data")
	}
	if chatReq.ResponseFormat == nil || len(chatReq.ResponseFormat.JSONSchema) == 0 {
		t.Error("request has no structured output schema")
	}
}
