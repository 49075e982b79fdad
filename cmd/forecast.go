package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/travelbudgetfx/internal/currency"
	"github.com/ziadkadry99/travelbudgetfx/internal/forecast"
	"github.com/ziadkadry99/travelbudgetfx/internal/progress"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast [destination]",
	Short: "Forecast the destination currency and pick the best exchange day",
	Args:  cobra.ExactArgs(1),
	RunE:  runForecast,
}

var currencyCmd = &cobra.Command{
	Use:   "currency [destination]",
	Short: "Show which currency a destination uses",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(currency.Resolve(args[0]))
	},
}

func init() {
	forecastCmd.Flags().String("currency", "USD", "home currency code")
	forecastCmd.Flags().Int("horizon", 0, "days to forecast (default: config forecast.horizon_days)")
	forecastCmd.Flags().Bool("json", false, "output the series and summary as JSON")
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(currencyCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	quietLogs()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	home, _ := cmd.Flags().GetString("currency")
	home = strings.ToUpper(strings.TrimSpace(home))
	if !trip.IsSupportedCurrency(home) {
		return fmt.Errorf("unsupported home currency %q", home)
	}
	horizon, _ := cmd.Flags().GetInt("horizon")
	if horizon <= 0 {
		horizon = cfg.Forecast.HorizonDays
	}

	req := forecast.Request{Base: currency.Resolve(args[0]), Target: home, Horizon: horizon}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reporter := progress.NewReporter()
	reporter.Start(fmt.Sprintf("Fetching %s/%s", req.Base, req.Target))
	series, err := createForecastSource(cfg).Forecast(ctx, req)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("fetching forecast: %w", err)
	}

	sum := forecast.Summarize(series)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Request        forecast.Request `json:"request"`
			Series         forecast.Series  `json:"series"`
			Summary        forecast.Summary `json:"summary"`
			Recommendation string           `json:"recommendation,omitempty"`
		}{req, series, sum, forecast.Recommendation(sum)})
	}

	fmt.Printf("%s/%s over %d days\n\n", req.Base, req.Target, len(series))
	for _, p := range series {
		fmt.Printf("  %s  %.4f\n", p.Day(), p.Rate)
	}
	fmt.Printf("\n  current %.4f  average %.4f  range %.4f-%.4f  trend %+.2f%%\n",
		sum.Current, sum.Average, sum.Min, sum.Max, sum.TrendPercent)
	if rec := forecast.Recommendation(sum); rec != "" {
		fmt.Printf("\n%s\n", rec)
	}
	return nil
}
