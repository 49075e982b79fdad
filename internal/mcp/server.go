package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
	"github.com/ziadkadry99/travelbudgetfx/internal/forecast"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the trip planning helpers as tools.
type Server struct {
	forecasts forecast.Source
	sessions  *dialogue.Store
	now       func() time.Time
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server. forecasts may be nil, in which case
// summarize_forecast reports that no rate source is configured.
func NewServer(forecasts forecast.Source) *Server {
	s := &Server{
		forecasts: forecasts,
		now:       time.Now,
	}

	s.mcp = server.NewMCPServer(
		"travelfx",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(scoreTripTool, s.handleScoreTrip)
	s.mcp.AddTool(resolveCurrencyTool, s.handleResolveCurrency)
	s.mcp.AddTool(summarizeForecastTool, s.handleSummarizeForecast)
	s.mcp.AddTool(formatItineraryTool, s.handleFormatItinerary)
}

// SetSessionStore enables the list_sessions tool over stored planning sessions.
func (s *Server) SetSessionStore(store *dialogue.Store) {
	s.sessions = store
	s.mcp.AddTool(listSessionsTool, s.handleListSessions)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
