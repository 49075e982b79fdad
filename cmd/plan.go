package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/travelbudgetfx/internal/config"
	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
	"github.com/ziadkadry99/travelbudgetfx/internal/markup"
	"github.com/ziadkadry99/travelbudgetfx/internal/progress"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a trip in an interactive conversation",
	Long: `Collects the trip details (from flags or a short form), then opens a chat
with the travel assistant. Type "exit" to leave; the session is saved and
can be picked up again with --resume.`,
	RunE: runPlan,
}

func init() {
	addTripFlags(planCmd)
	planCmd.Flags().String("resume", "", "continue a saved session by ID")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	quietLogs()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	// Replies are printed whole; the terminal has no use for a typing effect.
	opts := engineOptions(cfg, provider, database)
	opts.RevealInterval = 0
	engine := dialogue.NewEngine(opts)

	s, err := openPlanSession(ctx, cmd, engine)
	if err != nil {
		return err
	}

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()
	stopPrinting := make(chan struct{})
	defer close(stopPrinting)
	go printUpdates(updates, stopPrinting)

	fmt.Printf("\nTrip rating for %s: %.1f/10 (affordability %.1f, seasonality %.1f, accessibility %.1f)\n",
		s.Params.Destination, s.Rating.Overall, s.Rating.Affordability, s.Rating.Seasonality, s.Rating.Accessibility)
	fmt.Printf("Session %s\n\n", s.ID)
	for _, t := range s.Turns() {
		printTurn(t)
	}

	reporter := progress.NewReporter()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reporter.Start("Thinking")
		_, err := engine.Send(ctx, s.ID, line)
		reporter.Finish()
		switch {
		case errors.Is(err, dialogue.ErrRequestInFlight):
			fmt.Fprintln(os.Stderr, "Still working on the previous message...")
		case err != nil:
			return err
		}
		// Let the printer catch up before prompting again.
		time.Sleep(50 * time.Millisecond)
	}

	fmt.Printf("\nSession saved. Resume with: travelfx plan --resume %s\n", s.ID)
	return scanner.Err()
}

func openPlanSession(ctx context.Context, cmd *cobra.Command, engine *dialogue.Engine) (*dialogue.Session, error) {
	if id, _ := cmd.Flags().GetString("resume"); id != "" {
		s, err := engine.Session(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resuming session %s: %w", id, err)
		}
		return s, nil
	}

	p, ok, err := tripFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	if !ok {
		p, err = config.RunTripWizard(engine.Now())
		if err != nil {
			return nil, err
		}
	}
	return engine.Start(ctx, p)
}

// printUpdates writes assistant turns, exports and forecasts as they arrive.
func printUpdates(updates <-chan dialogue.Update, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case u := <-updates:
			switch u.Type {
			case dialogue.UpdateTurn:
				if u.Turn != nil && u.Turn.Speaker == dialogue.SpeakerAssistant && u.Turn.Text != "" {
					printTurn(*u.Turn)
				}
			case dialogue.UpdateReveal:
				if u.Done {
					fmt.Printf("\n%s\n\n", markup.Strip(u.Text))
				}
			case dialogue.UpdateForecast:
				printForecast(u.Forecast)
			}
		}
	}
}

func printTurn(t dialogue.Turn) {
	if t.Speaker == dialogue.SpeakerUser {
		fmt.Printf("> %s\n", t.Text)
		return
	}
	fmt.Printf("\n%s\n\n", markup.Strip(t.Visible()))
}

func printForecast(v *dialogue.ForecastView) {
	if v == nil {
		return
	}
	fmt.Printf("Currency forecast %s/%s (%d days)\n", v.Base, v.Target, v.Horizon)
	if v.Error != "" {
		fmt.Printf("  unavailable: %s\n\n", v.Error)
		return
	}
	fmt.Printf("  current %.4f  average %.4f  range %.4f-%.4f  trend %+.2f%%\n",
		v.Summary.Current, v.Summary.Average, v.Summary.Min, v.Summary.Max, v.Summary.TrendPercent)
	if v.Recommendation != "" {
		fmt.Printf("  %s\n", v.Recommendation)
	}
	fmt.Println()
}
