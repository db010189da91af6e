package endpoints

import (
	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/defra"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	DefraManager *defra.DockerManager
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{DefraManager: cfg.DefraManager},

		// Label extraction
		&ExtractEndpoint{},

		// Scan history
		&CreateScanEndpoint{},
		&ListScansEndpoint{},
		&GetScanEndpoint{},
		&DeleteScanEndpoint{},

		// Health profile
		&GetProfileEndpoint{},
		&PutProfileEndpoint{},

		// Model call history
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},
		&LLMCallCountsEndpoint{},

		// Prompts
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
	}
}

// ScanCommands returns endpoints grouped under the "scans" CLI subcommand.
func ScanCommands() []api.Endpoint {
	return []api.Endpoint{
		&CreateScanEndpoint{},
		&ListScansEndpoint{},
		&GetScanEndpoint{},
		&DeleteScanEndpoint{},
	}
}

// ProfileCommands returns endpoints grouped under the "profile" CLI subcommand.
func ProfileCommands() []api.Endpoint {
	return []api.Endpoint{
		&GetProfileEndpoint{},
		&PutProfileEndpoint{},
	}
}

// LLMCallCommands returns endpoints grouped under the "llmcalls" CLI subcommand.
func LLMCallCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},
		&LLMCallCountsEndpoint{},
	}
}

// PromptsCommands returns endpoints grouped under the "prompts" CLI subcommand.
func PromptsCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
	}
}
