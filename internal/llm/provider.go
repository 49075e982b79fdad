// Package llm is the chat collaborator behind the travel assistant: a small
// Provider interface with OpenAI-compatible and Anthropic implementations.
package llm

import "context"

// Provider sends one chat completion request. Implementations must be safe
// for concurrent use by several planning sessions.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}
