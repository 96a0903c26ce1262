package agent

import "context"

// Provider is the interface for LLM integrations. The model's only job in
// this system is tool routing: turning a free-text question into a single
// backend tool call.
type Provider interface {
	Complete(ctx context.Context, messages []Message, config Config) (string, error)
}

// Message represents a chat message.
type Message struct {
	Role    string
	Content string
}

// Config configures the LLM provider.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}
