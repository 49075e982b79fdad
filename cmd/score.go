package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/travelbudgetfx/internal/currency"
	"github.com/ziadkadry99/travelbudgetfx/internal/scoring"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rate a trip for affordability, seasonality and accessibility",
	Long:  `Scores a trip on a 1-10 scale without contacting any chat provider. Requires --destination, --days, --budget and --depart.`,
	RunE:  runScore,
}

func init() {
	addTripFlags(scoreCmd)
	scoreCmd.Flags().String("today", "", "score as of this date (YYYY-MM-DD, default: today)")
	scoreCmd.Flags().Bool("json", false, "output the rating as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	p, ok, err := tripFromFlags(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("--destination is required")
	}

	today := time.Now()
	if raw, _ := cmd.Flags().GetString("today"); raw != "" {
		today, err = time.Parse(trip.DateLayout, raw)
		if err != nil {
			return fmt.Errorf("--today must be YYYY-MM-DD: %w", err)
		}
	}

	r := scoring.ScoreTrip(p, today)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Println(describeTrip(p))
	fmt.Printf("Local currency: %s\n\n", currency.Resolve(p.Destination))
	fmt.Printf("  Affordability  %4.1f\n", r.Affordability)
	fmt.Printf("  Seasonality    %4.1f\n", r.Seasonality)
	fmt.Printf("  Accessibility  %4.1f\n", r.Accessibility)
	fmt.Printf("  Overall        %4.1f / 10\n", r.Overall)
	return nil
}

func describeTrip(p trip.Parameters) string {
	return fmt.Sprintf("%s, %d days from %s, %.2f %s", p.Destination, p.DurationDays, p.Departure(), p.Budget, p.HomeCurrency)
}
