package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn handed to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a completion request. System prompts are carried
// separately so providers that treat them specially can do so.
type Request struct {
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// Usage reports token accounting when the provider supplies it.
type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Response is the model output.
type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client is the minimal completion surface the rest of the platform depends on.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
