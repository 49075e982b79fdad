package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.Forecast.HorizonDays != 30 {
		t.Errorf("expected default horizon 30, got %d", cfg.Forecast.HorizonDays)
	}
	if cfg.Dialogue.RevealInterval() != 15*time.Millisecond {
		t.Errorf("unexpected reveal interval %v", cfg.Dialogue.RevealInterval())
	}
	if cfg.Dialogue.ExportPromptDelay() != time.Second {
		t.Errorf("unexpected export prompt delay %v", cfg.Dialogue.ExportPromptDelay())
	}
	if cfg.Dialogue.ForecastDelay() != 1500*time.Millisecond {
		t.Errorf("unexpected forecast delay %v", cfg.Dialogue.ForecastDelay())
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.DatabasePath() != filepath.Join(".travelfx", "travelfx.db") {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".travelfx.yml")

	original := DefaultConfig()
	original.Provider = ProviderAnthropic
	original.Model = "claude-haiku-4-5-20251001"
	original.Quality = QualityLite
	original.Forecast.APIKey = "fx-key"
	original.Forecast.HorizonDays = 14
	original.Dialogue.RevealIntervalMS = 0
	original.Server.AllowAllOrigins = true

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if *loaded != *original {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *loaded, *original)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("expected defaults, got %+v", *cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	data := "provider: ollama\nmodel: llama3\ndialogue:\n  reveal_chunk: 10\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != ProviderOllama || cfg.Dialogue.RevealChunk != 10 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Dialogue.ExportPromptDelayMS != 1000 || cfg.Forecast.HorizonDays != 30 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRAVELFX_PROVIDER", "openrouter")
	t.Setenv("TRAVELFX_FORECAST__API_KEY", "from-env")
	t.Setenv("TRAVELFX_SERVER__PORT", "9090")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != ProviderOpenRouter {
		t.Errorf("expected provider override, got %q", cfg.Provider)
	}
	if cfg.Forecast.APIKey != "from-env" {
		t.Errorf("expected nested override, got %q", cfg.Forecast.APIKey)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "bard" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"bad quality", func(c *Config) { c.Quality = "ultra" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"negative rpm", func(c *Config) { c.RateLimitRPM = -1 }},
		{"empty forecast url", func(c *Config) { c.Forecast.BaseURL = "" }},
		{"zero horizon", func(c *Config) { c.Forecast.HorizonDays = 0 }},
		{"negative delay", func(c *Config) { c.Dialogue.ForecastDelayMS = -5 }},
		{"negative chunk", func(c *Config) { c.Dialogue.RevealChunk = -1 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestModelFor(t *testing.T) {
	if got := ModelFor(ProviderAnthropic, QualityLite); got != "claude-haiku-4-5-20251001" {
		t.Errorf("unexpected anthropic lite model %q", got)
	}
	if got := ModelFor(ProviderOllama, QualityMax); got != "llama3:70b" {
		t.Errorf("unexpected ollama max model %q", got)
	}
	if got := ModelFor("unknown", QualityMax); got != "gpt-4o-mini" {
		t.Errorf("expected fallback model, got %q", got)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := map[ProviderType]string{
		ProviderAnthropic:  "ANTHROPIC_API_KEY",
		ProviderOpenAI:     "OPENAI_API_KEY",
		ProviderGoogle:     "GOOGLE_API_KEY",
		ProviderOpenRouter: "OPENROUTER_API_KEY",
		ProviderOllama:     "",
	}
	for p, want := range tests {
		if got := APIKeyEnvVar(p); got != want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestTripFormValidators(t *testing.T) {
	if validatePositiveInt("7") != nil || validatePositiveInt("0") == nil || validatePositiveInt("a week") == nil {
		t.Error("validatePositiveInt misbehaves")
	}
	if validatePositiveAmount("2,500.50") != nil || validatePositiveAmount("-3") == nil {
		t.Error("validatePositiveAmount misbehaves")
	}
	if validateDate("2025-06-01") != nil || validateDate("01/06/2025") == nil {
		t.Error("validateDate misbehaves")
	}
	if validateRequired("destination")("  ") == nil {
		t.Error("validateRequired accepted blank input")
	}
	if labels := currencyLabels(); labels[0] != "USD - US Dollar" || len(labels) != 9 {
		t.Errorf("unexpected currency labels %v", labels)
	}
}
