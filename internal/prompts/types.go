// Package prompts provides prompt management with embedded defaults.
//
// Embedded .tmpl files in each stage package are the source of truth.
// Stages register their prompts with a Resolver at startup so the API
// can list them and so LLM call records can reference the exact prompt
// version by hash.
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: stages.assess.system
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}
