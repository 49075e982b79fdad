package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/travelbudgetfx/internal/audit"
	"github.com/ziadkadry99/travelbudgetfx/internal/config"
	"github.com/ziadkadry99/travelbudgetfx/internal/db"
	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
	"github.com/ziadkadry99/travelbudgetfx/internal/forecast"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
	"github.com/ziadkadry99/travelbudgetfx/internal/llm"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `travelfx init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createLLMProviderFromConfig creates a rate-limited chat provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(p, cfg.RateLimitRPM), nil
}

// createForecastSource returns the exchange-rate client from config.
func createForecastSource(cfg *config.Config) forecast.Source {
	return forecast.NewHTTPSource(cfg.Forecast.BaseURL, cfg.Forecast.APIKey)
}

// openDatabase creates the data directory if needed and opens the session database.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// engineOptions wires the dialogue engine from config. The caller picks the
// scheduler and may adjust pacing.
func engineOptions(cfg *config.Config, provider llm.Provider, database *db.DB) dialogue.Options {
	return dialogue.Options{
		Provider:          provider,
		Model:             cfg.Model,
		Store:             dialogue.NewStore(database),
		Audit:             audit.NewStore(database),
		Emitter:           itinerary.NewFileEmitter(cfg.ExportDir),
		Forecasts:         createForecastSource(cfg),
		Scheduler:         dialogue.TimerScheduler{},
		RevealInterval:    cfg.Dialogue.RevealInterval(),
		RevealChunk:       cfg.Dialogue.RevealChunk,
		ExportPromptDelay: cfg.Dialogue.ExportPromptDelay(),
		ForecastDelay:     cfg.Dialogue.ForecastDelay(),
		ForecastHorizon:   cfg.Forecast.HorizonDays,
	}
}

// quietLogs sends package logging to stderr, or drops it unless --verbose.
func quietLogs() {
	if verbose {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}

// addTripFlags registers the trip detail flags shared by plan and score.
func addTripFlags(cmd *cobra.Command) {
	cmd.Flags().String("destination", "", "destination, e.g. \"Tokyo, Japan\"")
	cmd.Flags().String("days", "", "trip length in days")
	cmd.Flags().String("budget", "", "total budget in the home currency")
	cmd.Flags().String("currency", "USD", "home currency code")
	cmd.Flags().String("depart", "", "departure date (YYYY-MM-DD)")
}

// tripFromFlags parses the trip flags. ok is false when no destination was
// given, so the caller can fall back to the wizard.
func tripFromFlags(cmd *cobra.Command) (p trip.Parameters, ok bool, err error) {
	dest, _ := cmd.Flags().GetString("destination")
	if strings.TrimSpace(dest) == "" {
		return trip.Parameters{}, false, nil
	}
	days, _ := cmd.Flags().GetString("days")
	budget, _ := cmd.Flags().GetString("budget")
	cur, _ := cmd.Flags().GetString("currency")
	depart, _ := cmd.Flags().GetString("depart")

	p, err = trip.Parse(dest, days, budget, cur, depart)
	return p, true, err
}
