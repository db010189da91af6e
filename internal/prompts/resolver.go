package prompts

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Resolver holds every registered embedded prompt, keyed by its
// hierarchical prompt key.
type Resolver struct {
	mu       sync.RWMutex
	embedded map[string]EmbeddedPrompt
	logger   *slog.Logger
}

// NewResolver creates a new prompt resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		embedded: make(map[string]EmbeddedPrompt),
		logger:   logger,
	}
}

// Register registers an embedded prompt. Each stage package calls this
// during initialization.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// Get returns the prompt registered under key.
func (r *Resolver) Get(key string) (EmbeddedPrompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.embedded[key]
	if !ok {
		return EmbeddedPrompt{}, fmt.Errorf("prompt not found: %s", key)
	}
	return p, nil
}

// List returns all registered prompts sorted by key.
func (r *Resolver) List() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
