package cmd

import (
	"fmt"

	"goalboard/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	if cfg.API.BaseURL != "" {
		fmt.Printf("    Server:  %s\n", cfg.API.BaseURL)
	} else {
		fmt.Println("    Server:  not configured")
	}
	apiKey := config.APIKey(cfg)
	if apiKey != "" {
		fmt.Printf("    API key: %s\n", maskAPIKey(apiKey))
	} else {
		fmt.Println("    API key: not configured")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DefaultLocation != "" {
		fmt.Printf("    Default location: %s\n", cfg.General.DefaultLocation)
	} else {
		fmt.Println("    Default location: not set")
	}
	fmt.Printf("    Cache: %s\n", config.CachePath(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `goalboard setup` to reconfigure.")
	return nil
}
