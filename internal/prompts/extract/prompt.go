package extract

import (
	_ "embed"

	"github.com/labelwise/labelwise/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPrompt string

// SystemPrompt returns the system prompt for label extraction.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt returns the user prompt for label extraction. The stage
// takes no variables; the image travels as a vision attachment.
func UserPrompt() string {
	return userPrompt
}

var userPromptHash = prompts.HashText(userPrompt)

// UserPromptHash returns the content hash of the embedded user prompt,
// matching the hash the resolver registers.
func UserPromptHash() string {
	return userPromptHash
}

// Prompt keys
const (
	SystemPromptKey = "stages.extract.system"
	UserPromptKey   = "stages.extract.user"
)

// RegisterPrompts registers the extraction prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Label extraction system prompt - transcribes product, ingredients and nutrition values from a label photo",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Label extraction user prompt",
	})
}
