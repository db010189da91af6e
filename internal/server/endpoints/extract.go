package endpoints

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/extract"
	"github.com/labelwise/labelwise/internal/svcctx"
	"github.com/labelwise/labelwise/internal/types"
)

// ExtractRequest is the request body for POST /api/extract. Image is
// a base64-encoded label photo, with or without a data URI prefix.
type ExtractRequest struct {
	Image string `json:"image"`
}

// ExtractResponse carries the structured label read from the photo.
// UploadID identifies the stored copy of the image, when one was kept.
type ExtractResponse struct {
	Label    types.LabelExtraction `json:"label"`
	UploadID string                `json:"upload_id,omitempty"`
}

// ExtractEndpoint handles POST /api/extract. It runs vision extraction
// on a label photo and returns the structured fields for review before
// the caller submits them for assessment.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) RequiresAuth() bool { return true }

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	svc := svcctx.ExtractFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "extraction service not available")
		return
	}

	label, err := svc.ExtractLabel(r.Context(), caller, req.Image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := ExtractResponse{Label: *label}

	// Keep a copy of the photo so the scan can be revisited later.
	// Storage failure doesn't fail the extraction.
	if dir := svcctx.HomeFrom(r.Context()); dir != nil {
		if data, err := extract.DecodeImage(req.Image); err == nil {
			uploadID := uuid.New().String()
			if err := os.WriteFile(dir.UploadPath(uploadID), data, 0o644); err == nil {
				resp.UploadID = uploadID
			} else if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
				logger.Warn("failed to store label photo", "error", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ExtractEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <image-path>",
		Short: "Extract structured label data from a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			req := ExtractRequest{Image: base64.StdEncoding.EncodeToString(data)}
			var resp ExtractResponse
			if err := getClient().Post(cmd.Context(), "/api/extract", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
