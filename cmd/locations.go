package cmd

import (
	"context"
	"fmt"
	"time"

	"goalboard/internal/cli"
	"goalboard/internal/config"

	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List locations you have access to",
	RunE:  runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}

func runLocations(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	locs, err := client.ListLocations(ctx)
	if err != nil {
		return err
	}
	if len(locs) == 0 {
		fmt.Println("  No locations assigned to this account.")
		return nil
	}

	t := cli.Table{
		Headers: []string{"ID", "Name", ""},
	}
	for _, l := range locs {
		mark := ""
		if l.ID == cfg.General.DefaultLocation {
			mark = "default"
		}
		t.Rows = append(t.Rows, []string{l.ID, l.Name, mark})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	fmt.Println()

	return nil
}
