package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.LLMProviders) == 0 {
		t.Fatal("no default LLM providers")
	}
	or, ok := cfg.GetLLMProvider("openrouter")
	if !ok {
		t.Fatal("default openrouter provider missing")
	}
	if !or.Enabled {
		t.Error("openrouter should be enabled by default")
	}
	if cfg.Defaults.LLMProvider != "openrouter" {
		t.Errorf("default llm_provider = %q", cfg.Defaults.LLMProvider)
	}
	if cfg.Defra.ContainerName != "labelwise-defra" {
		t.Errorf("defra container = %q", cfg.Defra.ContainerName)
	}
	if cfg.Auth.TokenTTLHours != 24 {
		t.Errorf("token ttl = %d, want 24", cfg.Auth.TokenTTLHours)
	}
}

func TestEnabledLLMProviders(t *testing.T) {
	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"a": {Type: "openrouter", Enabled: true},
			"b": {Type: "openai", Enabled: false},
		},
	}

	enabled := cfg.EnabledLLMProviders()
	if len(enabled) != 1 {
		t.Fatalf("got %d enabled providers, want 1", len(enabled))
	}
	if _, ok := enabled["a"]; !ok {
		t.Error("provider a should be enabled")
	}
}

func TestVisionProviderName(t *testing.T) {
	cfg := &Config{Defaults: DefaultsCfg{LLMProvider: "openrouter"}}
	if got := cfg.VisionProviderName(); got != "openrouter" {
		t.Errorf("VisionProviderName() = %q, want fallback to llm_provider", got)
	}

	cfg.Defaults.VisionProvider = "openai"
	if got := cfg.VisionProviderName(); got != "openai" {
		t.Errorf("VisionProviderName() = %q, want openai", got)
	}
}

func TestResolveEnvVars(t *testing.T) {
	os.Setenv("LABELWISE_TEST_KEY", "sk-12345")
	defer os.Unsetenv("LABELWISE_TEST_KEY")

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"env reference", "${LABELWISE_TEST_KEY}", "sk-12345"},
		{"plain value", "literal-key", "literal-key"},
		{"empty", "", ""},
		{"missing var", "${LABELWISE_MISSING_VAR}", ""},
		{"embedded", "prefix-${LABELWISE_TEST_KEY}", "prefix-sk-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.value); got != tt.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	os.Setenv("LABELWISE_TEST_KEY", "sk-12345")
	defer os.Unsetenv("LABELWISE_TEST_KEY")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "anthropic/claude-sonnet-4",
				APIKey:  "${LABELWISE_TEST_KEY}",
				Enabled: true,
			},
		},
	}

	rc := cfg.ToProviderRegistryConfig()
	got, ok := rc.LLMProviders["openrouter"]
	if !ok {
		t.Fatal("openrouter missing from registry config")
	}
	if got.APIKey != "sk-12345" {
		t.Errorf("api key = %q, want resolved value", got.APIKey)
	}
	if got.Model != "anthropic/claude-sonnet-4" {
		t.Errorf("model = %q", got.Model)
	}
}
