package config

// Config holds labelwise configuration.
// Stored at: ~/.labelwise/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Defra        DefraConfig               `mapstructure:"defra" yaml:"defra"`
	Auth         AuthConfig                `mapstructure:"auth" yaml:"auth"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type    string `mapstructure:"type" yaml:"type"`       // "openrouter", "openai"
	Model   string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	// LLMProvider handles the assessment stage.
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"`
	// VisionProvider handles label image extraction. Falls back to
	// LLMProvider when empty.
	VisionProvider string `mapstructure:"vision_provider" yaml:"vision_provider"`
}

// DefraConfig holds DefraDB container configuration.
type DefraConfig struct {
	// ContainerName is the Docker container name (default: labelwise-defra)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use (default: sourcenetwork/defradb:latest)
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 9181)
	Port string `mapstructure:"port" yaml:"port"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	// Secret signs and verifies API tokens (supports ${ENV_VAR} syntax).
	Secret string `mapstructure:"secret" yaml:"secret"`
	// TokenTTLHours bounds issued token lifetime (default: 24).
	TokenTTLHours int `mapstructure:"token_ttl_hours" yaml:"token_ttl_hours"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "anthropic/claude-sonnet-4",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:    "openrouter",
			VisionProvider: "",
		},
		Defra: DefraConfig{
			ContainerName: "labelwise-defra",
			Image:         "sourcenetwork/defradb:latest",
			Port:          "9181",
		},
		Auth: AuthConfig{
			Secret:        "${LABELWISE_AUTH_SECRET}",
			TokenTTLHours: 24,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// VisionProviderName returns the provider to use for image extraction.
func (c *Config) VisionProviderName() string {
	if c.Defaults.VisionProvider != "" {
		return c.Defaults.VisionProvider
	}
	return c.Defaults.LLMProvider
}
