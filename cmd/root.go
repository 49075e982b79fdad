package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/travelbudgetfx/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "travelfx",
	Short: "AI trip planning with currency forecasts",
	Long: `TravelBudgetFX plans a trip with you through a short conversation,
turns the result into a printable itinerary and tells you the best
day to exchange your money before you leave.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
