package prompts

import (
	"reflect"
	"testing"
)

func TestResolver_RegisterAndGet(t *testing.T) {
	r := NewResolver(nil)
	r.Register(EmbeddedPrompt{
		Key:         "stages.demo.user",
		Text:        "Assess {{.ProductName}} for {{.WeightGoal}}",
		Description: "demo",
	})

	p, err := r.Get("stages.demo.user")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Hash == "" {
		t.Error("hash not filled in on registration")
	}
	if p.Hash != HashText(p.Text) {
		t.Errorf("hash = %q, want content hash of the text", p.Hash)
	}
	if !reflect.DeepEqual(p.Variables, []string{"ProductName", "WeightGoal"}) {
		t.Errorf("variables = %v, want [ProductName WeightGoal]", p.Variables)
	}

	if _, err := r.Get("stages.demo.missing"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestResolver_ListSorted(t *testing.T) {
	r := NewResolver(nil)
	r.Register(EmbeddedPrompt{Key: "stages.extract.user", Text: "b"})
	r.Register(EmbeddedPrompt{Key: "stages.assess.user", Text: "a"})
	r.Register(EmbeddedPrompt{Key: "stages.assess.system", Text: "c"})

	out := r.List()
	if len(out) != 3 {
		t.Fatalf("got %d prompts, want 3", len(out))
	}
	want := []string{"stages.assess.system", "stages.assess.user", "stages.extract.user"}
	for i, key := range want {
		if out[i].Key != key {
			t.Errorf("List()[%d].Key = %q, want %q", i, out[i].Key, key)
		}
	}
}

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "no variables here", nil},
		{"single", "hello {{.Name}}", []string{"Name"}},
		{"spaced and deduped", "{{ .B }} {{.A}} {{.B}}", []string{"A", "B"}},
		{"nested field", "{{.Label.ProductName}}", []string{"Label.ProductName"}},
		{"control keywords ignored", "{{- if .Conditions}}{{.WeightGoal}}{{- end}}", []string{"WeightGoal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractVariables(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHashText(t *testing.T) {
	a := HashText("prompt one")
	b := HashText("prompt one")
	c := HashText("prompt two")

	if a != b {
		t.Error("same text hashed differently")
	}
	if a == c {
		t.Error("different texts hashed identically")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
