package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
	mcpserver "github.com/ziadkadry99/travelbudgetfx/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing trip scoring, currency and forecast tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogs()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		srv := mcpserver.NewServer(createForecastSource(cfg))

		database, err := openDatabase(cfg)
		if err != nil {
			// Sessions are optional for the tools; keep serving without them.
			fmt.Fprintf(os.Stderr, "Warning: %v\nlist_sessions will be unavailable.\n", err)
		} else {
			defer database.Close()
			srv.SetSessionStore(dialogue.NewStore(database))
		}

		fmt.Fprintf(os.Stderr, "travelfx MCP server started on stdio (forecasts=%s)\n", cfg.Forecast.BaseURL)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
