package endpoints

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/llmcall"
	"github.com/labelwise/labelwise/internal/svcctx"
)

// LLMCallsListResponse contains a page of the caller's model call history.
type LLMCallsListResponse struct {
	Calls []llmcall.Call `json:"calls"`
}

// ListLLMCallsEndpoint handles GET /api/llmcalls. Results are scoped
// to the caller's own calls.
type ListLLMCallsEndpoint struct{}

func (e *ListLLMCallsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls", e.handler
}

func (e *ListLLMCallsEndpoint) RequiresInit() bool { return true }

func (e *ListLLMCallsEndpoint) RequiresAuth() bool { return true }

func (e *ListLLMCallsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	store := svcctx.LLMCallStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "llm call store not available")
		return
	}

	q := r.URL.Query()
	filter := llmcall.QueryFilter{
		Owner:     caller.Subject,
		ScanID:    q.Get("scan_id"),
		PromptKey: q.Get("prompt_key"),
		Provider:  q.Get("provider"),
		Model:     q.Get("model"),
		Limit:     50,
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	if v := q.Get("success"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Success = &b
		}
	}
	if v := q.Get("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid after timestamp: "+err.Error())
			return
		}
		filter.After = &t
	}
	if v := q.Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid before timestamp: "+err.Error())
			return
		}
		filter.Before = &t
	}

	calls, err := store.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LLMCallsListResponse{Calls: calls})
}

func (e *ListLLMCallsEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	var scanID, promptKey, after, before string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your model call history",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			params.Set("limit", strconv.Itoa(limit))
			params.Set("offset", strconv.Itoa(offset))
			if scanID != "" {
				params.Set("scan_id", scanID)
			}
			if promptKey != "" {
				params.Set("prompt_key", promptKey)
			}
			if after != "" {
				params.Set("after", after)
			}
			if before != "" {
				params.Set("before", before)
			}

			var resp LLMCallsListResponse
			if err := getClient().Get(cmd.Context(), "/api/llmcalls?"+params.Encode(), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&scanID, "scan", "", "Filter by scan ID")
	cmd.Flags().StringVar(&promptKey, "prompt-key", "", "Filter by prompt key")
	cmd.Flags().StringVar(&after, "after", "", "Only calls after this RFC3339 timestamp")
	cmd.Flags().StringVar(&before, "before", "", "Only calls before this RFC3339 timestamp")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of calls to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of calls to skip")
	return cmd
}

// GetLLMCallEndpoint handles GET /api/llmcalls/{id}.
type GetLLMCallEndpoint struct{}

func (e *GetLLMCallEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls/{id}", e.handler
}

func (e *GetLLMCallEndpoint) RequiresInit() bool { return true }

func (e *GetLLMCallEndpoint) RequiresAuth() bool { return true }

func (e *GetLLMCallEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "call id is required")
		return
	}

	store := svcctx.LLMCallStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "llm call store not available")
		return
	}

	call, err := store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Callers may only see their own calls. A foreign ID looks the
	// same as a missing one.
	if call == nil || call.Owner != caller.Subject {
		writeError(w, http.StatusNotFound, "call not found")
		return
	}

	writeJSON(w, http.StatusOK, call)
}

func (e *GetLLMCallEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a model call by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var call llmcall.Call
			if err := getClient().Get(cmd.Context(), "/api/llmcalls/"+args[0], &call); err != nil {
				return err
			}
			return api.Output(call)
		},
	}
}

// LLMCallCountsResponse maps prompt keys to call counts.
type LLMCallCountsResponse struct {
	Counts map[string]int `json:"counts"`
}

// LLMCallCountsEndpoint handles GET /api/llmcalls/counts.
type LLMCallCountsEndpoint struct{}

func (e *LLMCallCountsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls/counts", e.handler
}

func (e *LLMCallCountsEndpoint) RequiresInit() bool { return true }

func (e *LLMCallCountsEndpoint) RequiresAuth() bool { return true }

func (e *LLMCallCountsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	store := svcctx.LLMCallStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "llm call store not available")
		return
	}

	counts, err := store.CountByPromptKey(r.Context(), caller.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LLMCallCountsResponse{Counts: counts})
}

func (e *LLMCallCountsEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Count your model calls by prompt key",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp LLMCallCountsResponse
			if err := getClient().Get(cmd.Context(), "/api/llmcalls/counts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
