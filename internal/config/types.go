package config

import (
	"path/filepath"
	"time"
)

// QualityTier picks the model used for a provider: faster and cheaper, or
// better itineraries.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType names a chat provider known to the llm package.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
	ProviderMiniMax    ProviderType = "minimax"
	ProviderOpenRouter ProviderType = "openrouter"
)

// Config is the top-level travelfx configuration, corresponding to .travelfx.yml.
type Config struct {
	Provider     ProviderType   `yaml:"provider" koanf:"provider"`
	Model        string         `yaml:"model" koanf:"model"`
	Quality      QualityTier    `yaml:"quality" koanf:"quality"`
	DataDir      string         `yaml:"data_dir" koanf:"data_dir"`
	ExportDir    string         `yaml:"export_dir" koanf:"export_dir"`
	RateLimitRPM int            `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	Forecast     ForecastConfig `yaml:"forecast" koanf:"forecast"`
	Dialogue     DialogueConfig `yaml:"dialogue" koanf:"dialogue"`
	Server       ServerConfig   `yaml:"server" koanf:"server"`
}

// ForecastConfig points at the exchange-rate service.
type ForecastConfig struct {
	BaseURL     string `yaml:"base_url" koanf:"base_url"`
	APIKey      string `yaml:"api_key,omitempty" koanf:"api_key"`
	HorizonDays int    `yaml:"horizon_days" koanf:"horizon_days"`
}

// DialogueConfig holds the pacing of the assistant's replies. Times are in
// milliseconds; a zero reveal interval shows replies at once.
type DialogueConfig struct {
	RevealIntervalMS    int `yaml:"reveal_interval_ms" koanf:"reveal_interval_ms"`
	RevealChunk         int `yaml:"reveal_chunk" koanf:"reveal_chunk"`
	ExportPromptDelayMS int `yaml:"export_prompt_delay_ms" koanf:"export_prompt_delay_ms"`
	ForecastDelayMS     int `yaml:"forecast_delay_ms" koanf:"forecast_delay_ms"`
}

// ServerConfig holds settings for `travelfx server`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

func (d DialogueConfig) RevealInterval() time.Duration {
	return time.Duration(d.RevealIntervalMS) * time.Millisecond
}

func (d DialogueConfig) ExportPromptDelay() time.Duration {
	return time.Duration(d.ExportPromptDelayMS) * time.Millisecond
}

func (d DialogueConfig) ForecastDelay() time.Duration {
	return time.Duration(d.ForecastDelayMS) * time.Millisecond
}

// DatabasePath is the SQLite file holding sessions and the audit trail.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "travelfx.db")
}
