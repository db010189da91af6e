package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/scans"
	"github.com/labelwise/labelwise/internal/svcctx"
	"github.com/labelwise/labelwise/internal/types"
)

// scanStoreStatus maps a scan store failure to an HTTP status: 400
// only when the caller supplied an unusable ID, 500 for everything
// else (storage unreachable, bad response).
func scanStoreStatus(err error) int {
	if errors.Is(err, scans.ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetScanEndpoint handles GET /api/scans/{id}.
type GetScanEndpoint struct{}

func (e *GetScanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/scans/{id}", e.handler
}

func (e *GetScanEndpoint) RequiresInit() bool { return true }

func (e *GetScanEndpoint) RequiresAuth() bool { return true }

func (e *GetScanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "scan id is required")
		return
	}

	store := svcctx.ScanStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan store not available")
		return
	}

	record, err := store.Get(r.Context(), caller.Subject, id)
	if err != nil {
		writeError(w, scanStoreStatus(err), err.Error())
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (e *GetScanEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a scan by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record types.ScanRecord
			if err := getClient().Get(cmd.Context(), "/api/scans/"+args[0], &record); err != nil {
				return err
			}
			return api.Output(record)
		},
	}
}

// DeleteScanEndpoint handles DELETE /api/scans/{id}.
type DeleteScanEndpoint struct{}

func (e *DeleteScanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/scans/{id}", e.handler
}

func (e *DeleteScanEndpoint) RequiresInit() bool { return true }

func (e *DeleteScanEndpoint) RequiresAuth() bool { return true }

func (e *DeleteScanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "scan id is required")
		return
	}

	store := svcctx.ScanStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "scan store not available")
		return
	}

	if err := store.Delete(r.Context(), caller.Subject, id); err != nil {
		writeError(w, scanStoreStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (e *DeleteScanEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a scan from your history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getClient().Delete(cmd.Context(), "/api/scans/"+args[0]); err != nil {
				return err
			}
			cmd.Println("Scan deleted")
			return nil
		},
	}
}
