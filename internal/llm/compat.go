package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Endpoint describes an OpenAI-compatible chat completions service.
type Endpoint struct {
	Name    string
	BaseURL string // empty uses the go-openai default
	KeyEnv  string // empty when the service needs no key

	// MinTemperature and MaxTemperature clamp the sampling temperature for
	// services that reject the full OpenAI range. Zero means no bound.
	MinTemperature float64
	MaxTemperature float64
}

// Endpoints are the OpenAI-compatible services NewProvider knows about.
var Endpoints = map[string]Endpoint{
	"openai": {
		Name:   "openai",
		KeyEnv: "OPENAI_API_KEY",
	},
	"openrouter": {
		Name:    "openrouter",
		BaseURL: "https://openrouter.ai/api/v1",
		KeyEnv:  "OPENROUTER_API_KEY",
	},
	"minimax": {
		Name:           "minimax",
		BaseURL:        "https://api.minimax.io/v1",
		KeyEnv:         "MINIMAX_API_KEY",
		MinTemperature: 0.01,
		MaxTemperature: 1.0,
	},
	"google": {
		Name:    "google",
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
		KeyEnv:  "GOOGLE_API_KEY",
	},
	"ollama": {
		Name:    "ollama",
		BaseURL: "http://localhost:11434/v1",
	},
}

var errNoChoices = errors.New("response contained no choices")

// ChatProvider talks to any OpenAI-compatible endpoint through go-openai.
type ChatProvider struct {
	endpoint Endpoint
	client   *openai.Client
	model    string
}

// NewChatProvider creates a provider for ep using apiKey and a default model.
func NewChatProvider(ep Endpoint, apiKey, model string) *ChatProvider {
	cfg := openai.DefaultConfig(apiKey)
	if ep.BaseURL != "" {
		cfg.BaseURL = ep.BaseURL
	}
	return &ChatProvider{
		endpoint: ep,
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
	}
}

func (p *ChatProvider) Name() string {
	return p.endpoint.Name
}

func (p *ChatProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.model(p.model),
		Messages:    messages,
		MaxTokens:   req.maxTokens(),
		Temperature: float32(p.temperature(req.Temperature)),
	})
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", p.endpoint.Name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s chat completion: %w", p.endpoint.Name, errNoChoices)
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:      choice.Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
	}, nil
}

func (p *ChatProvider) temperature(t float64) float64 {
	if lo := p.endpoint.MinTemperature; lo > 0 && t < lo {
		t = lo
	}
	if hi := p.endpoint.MaxTemperature; hi > 0 && t > hi {
		t = hi
	}
	return t
}
