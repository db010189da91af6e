package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/scans"
	"github.com/labelwise/labelwise/internal/svcctx"
	"github.com/labelwise/labelwise/internal/types"
)

// CreateScanRequest is the request body for POST /api/scans. Label is
// required. Profile is optional; when omitted the caller's stored
// health profile is used.
type CreateScanRequest struct {
	Label   types.LabelExtraction `json:"label"`
	Profile *types.HealthProfile  `json:"profile,omitempty"`
}

// CreateScanEndpoint handles POST /api/scans. It runs a safety
// assessment for the submitted label and persists the result in the
// caller's scan history.
type CreateScanEndpoint struct{}

func (e *CreateScanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/scans", e.handler
}

func (e *CreateScanEndpoint) RequiresInit() bool { return true }

func (e *CreateScanEndpoint) RequiresAuth() bool { return true }

func (e *CreateScanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req CreateScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	profile := req.Profile
	if profile == nil {
		profileStore := svcctx.ProfileStoreFrom(r.Context())
		if profileStore == nil {
			writeError(w, http.StatusServiceUnavailable, "profile store not available")
			return
		}
		stored, err := profileStore.Get(r.Context(), caller.Subject)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stored == nil {
			writeError(w, http.StatusBadRequest, "no health profile on file; include one in the request or save one first")
			return
		}
		profile = stored
	}

	svc := svcctx.AssessFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "assessment service not available")
		return
	}

	// The scan ID is minted before the assessment runs so recorded
	// model calls can reference the scan they produced.
	scanID := scans.NewID()

	result, err := svc.Assess(r.Context(), caller, scanID, types.AssessmentRequest{
		Profile: *profile,
		Label:   req.Label,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	scanStore := svcctx.ScanStoreFrom(r.Context())
	if scanStore == nil {
		writeError(w, http.StatusServiceUnavailable, "scan store not available")
		return
	}

	record, err := scanStore.Create(r.Context(), caller.Subject, scanID, req.Label, *result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "assessment succeeded but could not be saved: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (e *CreateScanEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	var labelFile string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Assess a label and save the scan",
		Long: `Assess a food label against your stored health profile and save
the result to your scan history.

The label is read as JSON from --label-file, e.g.:
  {"product_name": "Choco Crunch", "ingredients": "oats, sugar, cocoa", "sugar_g": 24}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(labelFile)
			if err != nil {
				return fmt.Errorf("failed to read label file: %w", err)
			}

			var label types.LabelExtraction
			if err := json.Unmarshal(data, &label); err != nil {
				return fmt.Errorf("invalid label JSON: %w", err)
			}

			var record types.ScanRecord
			if err := getClient().Post(cmd.Context(), "/api/scans", CreateScanRequest{Label: label}, &record); err != nil {
				return err
			}
			return api.Output(record)
		},
	}
	cmd.Flags().StringVar(&labelFile, "label-file", "", "Path to a JSON file with the label fields")
	cmd.MarkFlagRequired("label-file")
	return cmd
}
