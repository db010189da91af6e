package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/server/endpoints"
)

var (
	serverURL   string
	accessToken string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Labelwise server via HTTP.

These commands require a running server (labelwise serve). Most of
them operate on your own data and need an access token; pass one with
--token or set LABELWISE_TOKEN.

Examples:
  labelwise api health                       # Check server health
  labelwise api profile put --file me.json   # Save your health profile
  labelwise api extract label.jpg            # Read a label photo
  labelwise api scans list                   # List your scan history`,
}

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Scan history commands",
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Health profile commands",
}

var llmcallsCmd = &cobra.Command{
	Use:   "llmcalls",
	Short: "Model call history commands",
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt inspection commands",
}

// getClient builds the API client at runtime (after flag parsing).
func getClient() *api.Client {
	token := accessToken
	if token == "" {
		token = os.Getenv("LABELWISE_TOKEN")
	}
	return api.NewClient(serverURL, token)
}

func init() {
	// Persistent so all subcommands inherit them
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)
	apiCmd.PersistentFlags().StringVar(
		&accessToken, "token", "", "Access token (default: $LABELWISE_TOKEN)",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getClient))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getClient))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getClient))

	// Label extraction at top level of api
	apiCmd.AddCommand((&endpoints.ExtractEndpoint{}).Command(getClient))

	// Scans as subcommand group
	for _, ep := range endpoints.ScanCommands() {
		scansCmd.AddCommand(ep.Command(getClient))
	}

	// Profile as subcommand group
	for _, ep := range endpoints.ProfileCommands() {
		profileCmd.AddCommand(ep.Command(getClient))
	}

	// LLM calls as subcommand group
	for _, ep := range endpoints.LLMCallCommands() {
		llmcallsCmd.AddCommand(ep.Command(getClient))
	}

	// Prompts as subcommand group
	for _, ep := range endpoints.PromptsCommands() {
		promptsCmd.AddCommand(ep.Command(getClient))
	}

	apiCmd.AddCommand(scansCmd)
	apiCmd.AddCommand(profileCmd)
	apiCmd.AddCommand(llmcallsCmd)
	apiCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(apiCmd)
}
