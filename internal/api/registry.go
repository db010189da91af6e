package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
// initMiddleware wraps handlers that require full server initialization;
// authMiddleware wraps handlers that require a verified caller.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, initMiddleware, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresAuth() {
			handler = authMiddleware(handler)
		}
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// getClient is called at runtime to build the API client.
func (r *Registry) BuildCommands(getClient func() *Client) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running Labelwise server via HTTP.

These commands require a running server (labelwise serve).
Use --server to specify a custom server URL and --token for authentication.

Examples:
  labelwise api health                # Check server health
  labelwise api scans list            # List your scan history
  labelwise api profile get           # Show your health profile`,
	}

	for _, ep := range r.endpoints {
		apiCmd.AddCommand(ep.Command(getClient))
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
