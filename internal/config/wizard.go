package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// RunWizard asks for the provider, quality tier and data directory, then
// saves the result to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to TravelBudgetFX! Let's set up your travel assistant.")
	fmt.Println()

	providers := []ProviderType{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderOpenRouter, ProviderMiniMax, ProviderOllama}
	providerPrompt := promptui.Select{
		Label: "Select chat provider",
		Items: providers,
	}
	idx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := providers[idx]

	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   - quickest replies",
			"normal - balanced",
			"max    - most detailed itineraries",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	quality := []QualityTier{QualityLite, QualityNormal, QualityMax}[qualityIdx]

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Quality = quality
	cfg.Model = ModelFor(provider, quality)

	dataPrompt := promptui.Prompt{
		Label:    "Data directory (sessions and audit trail)",
		Default:  cfg.DataDir,
		Validate: validateRequired("data directory"),
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	exportPrompt := promptui.Prompt{
		Label:   "Directory for exported itinerary PDFs",
		Default: cfg.ExportDir,
	}
	if cfg.ExportDir, err = exportPrompt.Run(); err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running travelfx plan.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// RunTripWizard collects the trip details form: destination, duration,
// budget, home currency and departure date.
func RunTripWizard(today time.Time) (trip.Parameters, error) {
	ask := func(label, def string, validate promptui.ValidateFunc) (string, error) {
		p := promptui.Prompt{Label: label, Default: def, Validate: validate}
		return p.Run()
	}

	dest, err := ask("Destination", "", validateRequired("destination"))
	if err != nil {
		return trip.Parameters{}, fmt.Errorf("destination: %w", err)
	}
	days, err := ask("Duration (days)", "7", validatePositiveInt)
	if err != nil {
		return trip.Parameters{}, fmt.Errorf("duration: %w", err)
	}
	budget, err := ask("Budget", "", validatePositiveAmount)
	if err != nil {
		return trip.Parameters{}, fmt.Errorf("budget: %w", err)
	}

	currencyPrompt := promptui.Select{
		Label: "Home currency",
		Items: currencyLabels(),
	}
	idx, _, err := currencyPrompt.Run()
	if err != nil {
		return trip.Parameters{}, fmt.Errorf("home currency: %w", err)
	}

	departure, err := ask("Departure date (YYYY-MM-DD)", today.AddDate(0, 1, 0).Format(trip.DateLayout), validateDate)
	if err != nil {
		return trip.Parameters{}, fmt.Errorf("departure date: %w", err)
	}

	return trip.Parse(dest, days, budget, trip.SupportedCurrencies[idx].Code, departure)
}

func currencyLabels() []string {
	labels := make([]string, len(trip.SupportedCurrencies))
	for i, c := range trip.SupportedCurrencies {
		labels[i] = fmt.Sprintf("%s - %s", c.Code, c.Name)
	}
	return labels
}

func validateRequired(field string) promptui.ValidateFunc {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number of days greater than zero")
	}
	return nil
}

func validatePositiveAmount(s string) error {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil || v <= 0 {
		return errors.New("enter an amount greater than zero")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(trip.DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use the format YYYY-MM-DD")
	}
	return nil
}
