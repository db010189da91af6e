package endpoints

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/scans"
	"github.com/labelwise/labelwise/internal/svcctx"
	"github.com/labelwise/labelwise/internal/types"
)

// ScansListResponse contains a page of the caller's scan history.
type ScansListResponse struct {
	Scans []types.ScanRecord `json:"scans"`
}

// ListScansEndpoint handles GET /api/scans.
type ListScansEndpoint struct{}

func (e *ListScansEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/scans", e.handler
}

func (e *ListScansEndpoint) RequiresInit() bool { return true }

func (e *ListScansEndpoint) RequiresAuth() bool { return true }

func (e *ListScansEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	query := scans.ListQuery{Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			query.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			query.Offset = n
		}
	}
	// Repeatable: ?verdict=Not+Safe&verdict=Safe+to+Eat
	for _, v := range r.URL.Query()["verdict"] {
		query.Verdicts = append(query.Verdicts, types.Verdict(v))
	}

	store := svcctx.ScanStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan store not available")
		return
	}

	records, err := store.List(r.Context(), caller.Subject, query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ScansListResponse{Scans: records})
}

func (e *ListScansEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	var limit, offset int
	var verdicts []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your scan history",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			params.Set("limit", strconv.Itoa(limit))
			params.Set("offset", strconv.Itoa(offset))
			for _, v := range verdicts {
				params.Add("verdict", v)
			}

			var resp ScansListResponse
			if err := getClient().Get(cmd.Context(), "/api/scans?"+params.Encode(), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of scans to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of scans to skip")
	cmd.Flags().StringArrayVar(&verdicts, "verdict", nil, `Only scans with this verdict (repeatable), e.g. "Not Safe"`)
	return cmd
}
