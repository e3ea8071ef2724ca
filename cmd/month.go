// Package cmd implements the goalboard CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goalboard/internal/cli"
	"goalboard/internal/config"
	"goalboard/internal/metrics"
	"goalboard/internal/month"

	"github.com/spf13/cobra"
)

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show one month of goals vs actuals",
	RunE:  runMonth,
}

func init() {
	rootCmd.AddCommand(monthCmd)
}

func runMonth(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	locationID, yearMonth, err := resolveScope(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ms, err := loadMonth(ctx, cfg, locationID, yearMonth)
	if err != nil {
		if errors.Is(err, month.ErrEmptyMonth) {
			fmt.Printf("  No forecast published for %s at %s yet.\n", yearMonth, locationID)
			return nil
		}
		return err
	}

	now := time.Now()
	fmt.Println()
	fmt.Print(cli.RenderMonthTable(ms, now))
	fmt.Println()
	fmt.Println(cli.RenderSummaryLine(metrics.Project(ms, now)))
	fmt.Println()

	return nil
}
