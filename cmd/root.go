package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"goalboard/internal/config"
	"goalboard/internal/model"
	"goalboard/internal/month"
	"goalboard/internal/remote"
	"goalboard/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagLocation string
	flagMonth    string
	flagNoCache  bool
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "goalboard",
	Short: "Daily sales goals vs actuals",
	Long:  "Track daily sales goals against recorded actuals per location: month grid, trend projection, and actuals entry.",
	RunE:  runMonth,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagLocation, "location", "l", "", "Location ID (defaults to config)")
	rootCmd.PersistentFlags().StringVarP(&flagMonth, "month", "m", "", "Month as YYYY-MM (defaults to the current month)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite cache, always fetch from the server")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// resolveScope fills in location and month from flags, config, and the clock.
func resolveScope(cfg config.Config) (locationID, yearMonth string, err error) {
	locationID = flagLocation
	if locationID == "" {
		locationID = cfg.General.DefaultLocation
	}
	if locationID == "" {
		return "", "", errors.New("no location set: pass --location or run `goalboard setup`")
	}

	yearMonth = flagMonth
	if yearMonth == "" {
		yearMonth = time.Now().Format(model.MonthLayout)
	}
	if _, perr := time.Parse(model.MonthLayout, yearMonth); perr != nil {
		return "", "", fmt.Errorf("invalid month %q: want YYYY-MM", yearMonth)
	}

	return locationID, yearMonth, nil
}

func newClient(cfg config.Config) (*remote.Client, error) {
	if cfg.API.BaseURL == "" {
		return nil, errors.New("no server configured: run `goalboard setup`")
	}
	return remote.NewClient(cfg.API.BaseURL, config.APIKey(cfg)), nil
}

// loadMonth is the shared data path for the non-interactive commands:
// fetch from the server, cache the result, and fall back to the cache
// when the server is unreachable.
func loadMonth(ctx context.Context, cfg config.Config, locationID, yearMonth string) (model.MonthState, error) {
	client, err := newClient(cfg)
	if err != nil {
		return model.MonthState{}, err
	}

	records, fetchErr := client.ListDayRecords(ctx, locationID, yearMonth)
	if fetchErr == nil {
		st := month.NewStore()
		if err := st.Load(locationID, yearMonth, records); err != nil {
			return model.MonthState{}, err
		}
		ms := st.State()

		if !flagNoCache {
			if cache, err := store.Open(config.CachePath(cfg)); err == nil {
				_ = cache.SaveMonth(ms)
				cache.Close()
			}
		}
		return ms, nil
	}

	// Server unreachable — try the cache
	if !flagNoCache {
		if cache, err := store.Open(config.CachePath(cfg)); err == nil {
			defer cache.Close()
			if ms, fetchedAt, found, err := cache.LoadMonth(locationID, yearMonth); err == nil && found {
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "  Server unreachable — showing cached data from %s\n",
						fetchedAt.Format("2006-01-02 15:04"))
				}
				return ms, nil
			}
		}
	}

	return model.MonthState{}, fetchErr
}
