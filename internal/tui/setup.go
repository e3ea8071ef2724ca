package tui

import (
	"strings"

	"github.com/charmbracelet/huh"

	"goalboard/internal/config"
	"goalboard/internal/remote"
)

// setupValues receives the first-run form fields.
type setupValues struct {
	BaseURL  string
	APIKey   string
	Location string
}

func newSetupForm(vals *setupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Base URL of your goals backend.").
				Placeholder("https://goals.example.com").
				Value(&vals.BaseURL),
			huh.NewInput().
				Title("API key").
				Description("Issued by your administrator. GOALBOARD_API_KEY overrides this.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.APIKey),
			huh.NewInput().
				Title("Default location ID").
				Description("Run `goalboard locations` to list yours.").
				Value(&vals.Location),
		).Title("Welcome to goalboard!"),
	)
}

// saveSetupConfig persists the completed form and rebuilds the client.
func (a *App) saveSetupConfig() {
	cfg, _ := config.Load()

	if v := strings.TrimSpace(a.setupVals.BaseURL); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(a.setupVals.APIKey); v != "" {
		cfg.API.Key = v
	}
	if v := strings.TrimSpace(a.setupVals.Location); v != "" {
		cfg.General.DefaultLocation = v
	}
	a.setupVals = nil

	_ = config.Save(cfg)

	a.cfg = cfg
	if a.locationID == "" {
		a.locationID = cfg.General.DefaultLocation
	}
	if cfg.API.BaseURL != "" {
		a.client = remote.NewClient(cfg.API.BaseURL, config.APIKey(cfg))
	}
}
