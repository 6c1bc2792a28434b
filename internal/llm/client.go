package llm

import "context"

// Client is the interface the agent loop drives. Implementations wrap
// a hosted model provider.
type Client interface {
	// Chat sends a chat completion request with the tool catalog bound
	// and returns the response.
	Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
