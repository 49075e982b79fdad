package config

import "github.com/ziadkadry99/travelbudgetfx/internal/forecast"

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".travelfx.yml"

// modelPresets maps each provider and quality tier to a chat model.
var modelPresets = map[ProviderType]map[QualityTier]string{
	ProviderAnthropic: {
		QualityLite:   "claude-haiku-4-5-20251001",
		QualityNormal: "claude-sonnet-4-5-20250929",
		QualityMax:    "claude-sonnet-4-5-20250929",
	},
	ProviderOpenAI: {
		QualityLite:   "gpt-4o-mini",
		QualityNormal: "gpt-4o-mini",
		QualityMax:    "gpt-4o",
	},
	ProviderGoogle: {
		QualityLite:   "gemini-2.0-flash",
		QualityNormal: "gemini-2.0-flash",
		QualityMax:    "gemini-1.5-pro",
	},
	ProviderOllama: {
		QualityLite:   "llama3",
		QualityNormal: "llama3",
		QualityMax:    "llama3:70b",
	},
	ProviderMiniMax: {
		QualityLite:   "MiniMax-M2.5-highspeed",
		QualityNormal: "MiniMax-M2.5",
		QualityMax:    "MiniMax-M2.5",
	},
	ProviderOpenRouter: {
		QualityLite:   "openai/gpt-4o-mini",
		QualityNormal: "openai/gpt-4o-mini",
		QualityMax:    "anthropic/claude-sonnet-4.5",
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:     ProviderOpenAI,
		Model:        "gpt-4o-mini",
		Quality:      QualityNormal,
		DataDir:      ".travelfx",
		ExportDir:    "itineraries",
		RateLimitRPM: 30,
		Forecast: ForecastConfig{
			BaseURL:     forecast.DefaultBaseURL,
			HorizonDays: forecast.DefaultHorizon,
		},
		Dialogue: DialogueConfig{
			RevealIntervalMS:    15,
			RevealChunk:         3,
			ExportPromptDelayMS: 1000,
			ForecastDelayMS:     1500,
		},
		Server: ServerConfig{Port: 8080},
	}
}

// ModelFor returns the preset model for a provider and tier, falling back to
// the normal OpenAI model for unknown combinations.
func ModelFor(provider ProviderType, tier QualityTier) string {
	if m, ok := modelPresets[provider][tier]; ok {
		return m
	}
	return modelPresets[ProviderOpenAI][QualityNormal]
}
