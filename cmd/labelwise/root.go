package main

import (
	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "labelwise",
	Short: "Food label safety assessments against personal health profiles",
	Long: `Labelwise reads food labels and tells you whether a product is safe
for you to eat, based on your health profile.

A scan runs through:
  - Vision extraction of product name, ingredients, and nutrition facts
  - An LLM safety assessment against your conditions and weight goal
  - A three-way verdict: Safe to Eat, Consume in Moderation, or Not Safe

Every assessment is saved to your scan history, together with the
model calls that produced it.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.labelwise/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "labelwise home directory (default: ~/.labelwise)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
