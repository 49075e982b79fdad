package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const anthropicKeyEnv = "ANTHROPIC_API_KEY"

// Names lists every provider name NewProvider accepts, sorted.
func Names() []string {
	names := []string{"anthropic"}
	for name := range Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeyEnv returns the environment variable holding the API key for a
// provider, or "" when it needs none.
func KeyEnv(name string) string {
	if name == "anthropic" {
		return anthropicKeyEnv
	}
	return Endpoints[name].KeyEnv
}

// NewProvider creates the named provider with a default model. API keys are
// read from the environment; OLLAMA_HOST overrides the local Ollama address.
func NewProvider(name, model string) (Provider, error) {
	if name == "anthropic" {
		key := os.Getenv(anthropicKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("%s environment variable is not set", anthropicKeyEnv)
		}
		return NewAnthropicProvider(key, model), nil
	}

	ep, ok := Endpoints[name]
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q: must be one of %s", name, strings.Join(Names(), ", "))
	}

	var key string
	if ep.KeyEnv != "" {
		key = os.Getenv(ep.KeyEnv)
		if key == "" {
			return nil, fmt.Errorf("%s environment variable is not set", ep.KeyEnv)
		}
	}
	if name == "ollama" {
		if host := os.Getenv("OLLAMA_HOST"); host != "" {
			ep.BaseURL = strings.TrimRight(host, "/") + "/v1"
		}
	}
	return NewChatProvider(ep, key, model), nil
}
