package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labelwise/labelwise/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file",
	Long: `Write a default config.yaml to the labelwise home directory.

The generated file references API keys and the token signing secret
via environment variables (OPENROUTER_API_KEY, LABELWISE_AUTH_SECRET),
so no secrets land on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}

		path := h.ConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}

		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}
