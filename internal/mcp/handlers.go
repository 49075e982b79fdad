package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/travelbudgetfx/internal/currency"
	"github.com/ziadkadry99/travelbudgetfx/internal/forecast"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
	"github.com/ziadkadry99/travelbudgetfx/internal/scoring"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// tripFromRequest reads the shared trip arguments.
func tripFromRequest(request mcp.CallToolRequest) (trip.Parameters, error) {
	p := trip.Parameters{
		Destination:  strings.TrimSpace(request.GetString("destination", "")),
		DurationDays: int(request.GetFloat("duration_days", 0)),
		Budget:       request.GetFloat("budget", 0),
		HomeCurrency: strings.ToUpper(strings.TrimSpace(request.GetString("home_currency", ""))),
	}
	if dep := request.GetString("departure_date", ""); dep != "" {
		t, err := time.Parse(trip.DateLayout, dep)
		if err != nil {
			return trip.Parameters{}, fmt.Errorf("%w: departure date %q must be YYYY-MM-DD", trip.ErrInvalidParameters, dep)
		}
		p.DepartureDate = t
	}
	if err := p.Validate(); err != nil {
		return trip.Parameters{}, err
	}
	return p, nil
}

// handleScoreTrip rates a trip on the 1-10 scale.
func (s *Server) handleScoreTrip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := tripFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	today := s.now()
	if raw := request.GetString("today", ""); raw != "" {
		t, err := time.Parse(trip.DateLayout, raw)
		if err != nil {
			return mcp.NewToolResultError("today must be YYYY-MM-DD"), nil
		}
		today = t
	}

	r := scoring.ScoreTrip(p, today)

	var b strings.Builder
	fmt.Fprintf(&b, "# Trip score: %s\n\n", p.Destination)
	fmt.Fprintf(&b, "%d days from %s, %.2f %s (%.2f per day)\n\n",
		p.DurationDays, p.Departure(), p.Budget, p.HomeCurrency, p.DailyBudget())
	fmt.Fprintf(&b, "- Affordability: %.1f\n", r.Affordability)
	fmt.Fprintf(&b, "- Seasonality: %.1f\n", r.Seasonality)
	fmt.Fprintf(&b, "- Accessibility: %.1f\n", r.Accessibility)
	fmt.Fprintf(&b, "- **Overall: %.1f / 10**\n", r.Overall)
	return mcp.NewToolResultText(b.String()), nil
}

// handleResolveCurrency maps a destination to its currency code.
func (s *Server) handleResolveCurrency(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dest, err := request.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: destination"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s uses %s", strings.TrimSpace(dest), currency.Resolve(dest))), nil
}

// handleSummarizeForecast fetches a rate forecast and recommends a day to exchange.
func (s *Server) handleSummarizeForecast(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dest, err := request.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: destination"), nil
	}
	home, err := request.RequireString("home_currency")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: home_currency"), nil
	}
	home = strings.ToUpper(strings.TrimSpace(home))
	if !trip.IsSupportedCurrency(home) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported home currency %q", home)), nil
	}
	if s.forecasts == nil {
		return mcp.NewToolResultError("no forecast source configured"), nil
	}

	horizon := request.GetInt("horizon", forecast.DefaultHorizon)
	if horizon <= 0 {
		horizon = forecast.DefaultHorizon
	}

	req := forecast.Request{Base: currency.Resolve(dest), Target: home, Horizon: horizon}
	series, err := s.forecasts.Forecast(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("forecast failed: %v", err)), nil
	}
	if len(series) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No forecast data for %s/%s.", req.Base, req.Target)), nil
	}

	sum := forecast.Summarize(series)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s/%s forecast (%d days)\n\n", req.Base, req.Target, len(series))
	fmt.Fprintf(&b, "- Current: %.4f\n", sum.Current)
	fmt.Fprintf(&b, "- Average: %.4f\n", sum.Average)
	fmt.Fprintf(&b, "- Range: %.4f to %.4f\n", sum.Min, sum.Max)
	fmt.Fprintf(&b, "- Trend: %+.2f%%\n\n", sum.TrendPercent)
	b.WriteString(forecast.Recommendation(sum))
	b.WriteByte('\n')
	return mcp.NewToolResultText(b.String()), nil
}

// handleFormatItinerary lays out itinerary text as document pages.
func (s *Server) handleFormatItinerary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	p, err := tripFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc := itinerary.Format(text, &p)
	if doc == nil {
		return mcp.NewToolResultError("itinerary text is empty"), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s.pdf (%d page", doc.Name, len(doc.Pages))
	if len(doc.Pages) != 1 {
		b.WriteByte('s')
	}
	b.WriteString(")\n")
	for i, page := range doc.Pages {
		fmt.Fprintf(&b, "\n--- Page %d ---\n", i+1)
		for _, bl := range page.Blocks {
			b.WriteString(bl.Text)
			b.WriteByte('\n')
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleListSessions lists stored planning sessions.
func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	sessions, err := s.sessions.ListSessions(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sessions failed: %v", err)), nil
	}
	if len(sessions) == 0 {
		return mcp.NewToolResultText("No planning sessions yet. Start one with `travelfx plan`."), nil
	}

	var b strings.Builder
	b.WriteString("# Planning sessions\n\n")
	for _, ss := range sessions {
		fmt.Fprintf(&b, "- **%s** %s (%s, updated %s)\n",
			ss.Destination, ss.ID, ss.Phase, ss.UpdatedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(b.String()), nil
}
