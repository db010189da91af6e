package endpoints

import (
	"net/http"
	"net/url"
	"sort"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/svcctx"
)

// PromptResponse represents a single prompt.
type PromptResponse struct {
	Key         string   `json:"key"`
	Text        string   `json:"text"`
	Description string   `json:"description,omitempty"`
	Variables   []string `json:"variables,omitempty"`
	Hash        string   `json:"hash,omitempty"`
}

// PromptsListResponse contains all prompts.
type PromptsListResponse struct {
	Prompts []PromptResponse `json:"prompts"`
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return false }

func (e *ListPromptsEndpoint) RequiresAuth() bool { return false }

func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.ResolverFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusInternalServerError, "prompt resolver not available")
		return
	}

	embedded := resolver.List()
	sort.Slice(embedded, func(i, j int) bool {
		return embedded[i].Key < embedded[j].Key
	})

	resp := PromptsListResponse{
		Prompts: make([]PromptResponse, len(embedded)),
	}
	for i, p := range embedded {
		resp.Prompts[i] = PromptResponse{
			Key:         p.Key,
			Text:        p.Text,
			Description: p.Description,
			Variables:   p.Variables,
			Hash:        p.Hash,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ListPromptsEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp PromptsListResponse
			if err := getClient().Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetPromptEndpoint handles GET /api/prompts/{key...}.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{key...}", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return false }

func (e *GetPromptEndpoint) RequiresAuth() bool { return false }

func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(r.PathValue("key"))
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "invalid prompt key")
		return
	}

	resolver := svcctx.ResolverFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusInternalServerError, "prompt resolver not available")
		return
	}

	embedded, err := resolver.Get(key)
	if err != nil {
		writeError(w, http.StatusNotFound, "prompt not found: "+key)
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{
		Key:         embedded.Key,
		Text:        embedded.Text,
		Description: embedded.Description,
		Variables:   embedded.Variables,
		Hash:        embedded.Hash,
	})
}

func (e *GetPromptEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a prompt by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp PromptResponse
			if err := getClient().Get(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
