package extract

import (
	"encoding/json"
	"testing"

	"github.com/labelwise/labelwise/internal/prompts"
)

func TestRegisterPrompts(t *testing.T) {
	r := prompts.NewResolver(nil)
	RegisterPrompts(r)

	for _, key := range []string{SystemPromptKey, UserPromptKey} {
		p, err := r.Get(key)
		if err != nil {
			t.Fatalf("prompt %s not registered: %v", key, err)
		}
		if p.Text == "" || p.Hash == "" {
			t.Errorf("prompt %s registered without text or hash", key)
		}
	}

	user, _ := r.Get(UserPromptKey)
	if user.Hash != UserPromptHash() {
		t.Errorf("registered hash = %q, want %q", user.Hash, UserPromptHash())
	}
}

func TestBuildChatRequest(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0}
	chatReq := BuildChatRequest(image)

	if len(chatReq.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(chatReq.Messages))
	}
	if chatReq.Messages[0].Role != "system" || chatReq.Messages[0].Content != SystemPrompt() {
		t.Error("missing system message")
	}
	if len(chatReq.Messages[1].Images) != 1 {
		t.Fatal("image not attached to user message")
	}
	if string(chatReq.Messages[1].Images[0]) != string(image) {
		t.Error("image bytes altered")
	}
	if chatReq.Temperature != 0 {
		t.Errorf("temperature = %v, want 0 for transcription", chatReq.Temperature)
	}
	if chatReq.ResponseFormat == nil || len(chatReq.ResponseFormat.JSONSchema) == 0 {
		t.Fatal("request has no structured output schema")
	}
}

func TestOutputSchema_NullableNutrition(t *testing.T) {
	raw, err := json.Marshal(OutputSchema["json_schema"])
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}

	var wrapper struct {
		Schema struct {
			Properties map[string]struct {
				Type json.RawMessage `json:"type"`
			} `json:"properties"`
			Required []string `json:"required"`
		} `json:"schema"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}

	// Nutrition values distinguish "not printed" (null) from zero
	for _, field := range []string{"serving_size_g", "calories", "fat_g", "sugar_g", "sodium_mg"} {
		prop, ok := wrapper.Schema.Properties[field]
		if !ok {
			t.Errorf("schema missing property %s", field)
			continue
		}
		var kinds []string
		if err := json.Unmarshal(prop.Type, &kinds); err != nil {
			t.Errorf("property %s is not nullable: %s", field, prop.Type)
			continue
		}
		if len(kinds) != 2 || kinds[1] != "null" {
			t.Errorf("property %s type = %v, want [number null]", field, kinds)
		}
	}
	if len(wrapper.Schema.Required) != 8 {
		t.Errorf("got %d required fields, want 8", len(wrapper.Schema.Required))
	}
}
