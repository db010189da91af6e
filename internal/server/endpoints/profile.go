package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/svcctx"
	"github.com/labelwise/labelwise/internal/types"
)

// GetProfileEndpoint handles GET /api/profile.
type GetProfileEndpoint struct{}

func (e *GetProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/profile", e.handler
}

func (e *GetProfileEndpoint) RequiresInit() bool { return true }

func (e *GetProfileEndpoint) RequiresAuth() bool { return true }

func (e *GetProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	store := svcctx.ProfileStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "profile store not available")
		return
	}

	profile, err := store.Get(r.Context(), caller.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "no health profile on file")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (e *GetProfileEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show your health profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var profile types.HealthProfile
			if err := getClient().Get(cmd.Context(), "/api/profile", &profile); err != nil {
				return err
			}
			return api.Output(profile)
		},
	}
}

// PutProfileEndpoint handles PUT /api/profile. The profile is
// validated and replaces any existing profile for the caller.
type PutProfileEndpoint struct{}

func (e *PutProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/profile", e.handler
}

func (e *PutProfileEndpoint) RequiresInit() bool { return true }

func (e *PutProfileEndpoint) RequiresAuth() bool { return true }

func (e *PutProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var profile types.HealthProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	store := svcctx.ProfileStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "profile store not available")
		return
	}

	if err := store.Put(r.Context(), caller.Subject, profile); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (e *PutProfileEndpoint) Command(getClient func() *api.Client) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Save your health profile",
		Long: `Save (or replace) your health profile from a JSON file, e.g.:
  {"conditions": ["diabetes"], "weight_goal": "lose weight", "weight_kg": 82.5}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read profile file: %w", err)
			}

			var profile types.HealthProfile
			if err := json.Unmarshal(data, &profile); err != nil {
				return fmt.Errorf("invalid profile JSON: %w", err)
			}

			var saved types.HealthProfile
			if err := getClient().Put(cmd.Context(), "/api/profile", profile, &saved); err != nil {
				return err
			}
			return api.Output(saved)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON file with the profile fields")
	cmd.MarkFlagRequired("file")
	return cmd
}
