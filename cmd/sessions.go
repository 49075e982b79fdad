package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/travelbudgetfx/internal/audit"
	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved planning sessions",
	RunE:  runSessions,
}

var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Write the last exported itinerary of a session as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show the audit trail of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit entries older than a number of days",
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().Int("days", 90, "keep entries newer than this many days")
	rootCmd.AddCommand(pruneCmd)
	sessionsCmd.Flags().Int("limit", 20, "maximum number of sessions to list")
	exportCmd.Flags().String("dir", "", "output directory (default: config export_dir)")
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	quietLogs()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	list, err := dialogue.NewStore(database).ListSessions(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No sessions yet. Start one with `travelfx plan`.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDESTINATION\tPHASE\tUPDATED")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Destination, s.Phase, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	quietLogs()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	doc, err := dialogue.NewStore(database).LatestExport(context.Background(), args[0])
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("session %s has no exported itinerary yet", args[0])
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.ExportDir
	}
	emitter := itinerary.NewFileEmitter(dir)
	if err := emitter.Emit(context.Background(), doc); err != nil {
		return err
	}
	path, _ := filepath.Abs(emitter.Path(doc))
	fmt.Printf("Wrote %s (%d pages)\n", path, len(doc.Pages))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	quietLogs()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := audit.NewStore(database).Query(context.Background(), audit.QueryFilter{SessionID: args[0]})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No audit entries for this session.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tACTION\tSUMMARY")
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.ActorType, e.Action, e.Summary)
	}
	return w.Flush()
}

func runPrune(cmd *cobra.Command, args []string) error {
	quietLogs()
	days, _ := cmd.Flags().GetInt("days")
	if days < 0 {
		return fmt.Errorf("--days must not be negative")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := audit.NewStore(database).DeleteBefore(context.Background(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d audit entries older than %d days\n", n, days)
	return nil
}
