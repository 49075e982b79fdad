package mcp

import "github.com/mark3labs/mcp-go/mcp"

var tripParams = []mcp.ToolOption{
	mcp.WithString("destination",
		mcp.Required(),
		mcp.Description("Free-text destination, e.g. \"Tokyo, Japan\""),
	),
	mcp.WithNumber("duration_days",
		mcp.Required(),
		mcp.Description("Trip length in days"),
	),
	mcp.WithNumber("budget",
		mcp.Required(),
		mcp.Description("Total budget in the home currency"),
	),
	mcp.WithString("home_currency",
		mcp.Required(),
		mcp.Description("Home currency code"),
		mcp.Enum("USD", "EUR", "GBP", "JPY", "INR", "CAD", "AUD", "CHF", "CNY"),
	),
	mcp.WithString("departure_date",
		mcp.Required(),
		mcp.Description("Departure date as YYYY-MM-DD"),
	),
}

func withTripParams(name string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append(append([]mcp.ToolOption{}, opts...), tripParams...)...)
}

// scoreTripTool defines the score_trip MCP tool.
var scoreTripTool = withTripParams("score_trip",
	mcp.WithDescription("Rate a trip for affordability, seasonality and accessibility on a 1-10 scale."),
	mcp.WithString("today",
		mcp.Description("Date to score against as YYYY-MM-DD (default: today)"),
	),
)

// resolveCurrencyTool defines the resolve_currency MCP tool.
var resolveCurrencyTool = mcp.NewTool("resolve_currency",
	mcp.WithDescription("Map a destination to the currency used there. Unknown places resolve to USD."),
	mcp.WithString("destination",
		mcp.Required(),
		mcp.Description("Free-text destination"),
	),
)

// summarizeForecastTool defines the summarize_forecast MCP tool.
var summarizeForecastTool = mcp.NewTool("summarize_forecast",
	mcp.WithDescription("Forecast the destination currency against the home currency and pick the best day to exchange money."),
	mcp.WithString("destination",
		mcp.Required(),
		mcp.Description("Free-text destination; its currency is the base of the pair"),
	),
	mcp.WithString("home_currency",
		mcp.Required(),
		mcp.Description("Target currency code"),
	),
	mcp.WithNumber("horizon",
		mcp.Description("Days to forecast (default 30)"),
	),
)

// formatItineraryTool defines the format_itinerary MCP tool.
var formatItineraryTool = withTripParams("format_itinerary",
	mcp.WithDescription("Lay out itinerary text as paginated document pages with a trip header and footers."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Itinerary text, plain or markdown"),
	),
)

// listSessionsTool defines the list_sessions MCP tool.
var listSessionsTool = mcp.NewTool("list_sessions",
	mcp.WithDescription("List recent planning sessions with their destination and phase."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of sessions to return (default 20)"),
	),
)
