package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"goalboard/internal/config"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to goalboard!")
	fmt.Println()

	// 1. Server URL
	fmt.Println("  1. Server URL")
	fmt.Println("     The base URL of your goals backend.")
	if cfg.API.BaseURL != "" {
		fmt.Printf("     Current: %s\n", cfg.API.BaseURL)
	}
	fmt.Print("     > ")
	baseURL, _ := reader.ReadString('\n')
	baseURL = strings.TrimSpace(baseURL)
	if baseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(baseURL, "/")
	}
	fmt.Println()

	// 2. API key
	fmt.Println("  2. API key")
	fmt.Println("     Issued by your administrator. GOALBOARD_API_KEY overrides this.")
	existing := config.APIKey(cfg)
	if existing != "" {
		fmt.Printf("     Current: %s\n", maskAPIKey(existing))
	}
	fmt.Print("     > ")
	apiKey, _ := reader.ReadString('\n')
	apiKey = strings.TrimSpace(apiKey)
	if apiKey != "" {
		cfg.API.Key = apiKey
	}
	fmt.Println()

	// 3. Default location
	fmt.Println("  3. Default location ID")
	fmt.Println("     Used when --location is not passed. Run `goalboard locations` to list yours.")
	if cfg.General.DefaultLocation != "" {
		fmt.Printf("     Current: %s\n", cfg.General.DefaultLocation)
	}
	fmt.Print("     > ")
	loc, _ := reader.ReadString('\n')
	loc = strings.TrimSpace(loc)
	if loc != "" {
		cfg.General.DefaultLocation = loc
	}
	fmt.Println()

	// 4. Theme
	fmt.Println("  4. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Terminal (ANSI 16)")
	fmt.Print("     > ")
	themeChoice, _ := reader.ReadString('\n')
	themeChoice = strings.TrimSpace(themeChoice)
	switch themeChoice {
	case "2":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `goalboard setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
