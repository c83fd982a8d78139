package backend

import "context"

// #region types

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message sent to a candidate.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is a single generation request for one candidate.
type Completion struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64 // always sent, 0 included
	TopP        float64 // 0 = server default
}

// #endregion types

// #region transport

// Transport performs one generation call against a backend.
type Transport interface {
	Complete(ctx context.Context, req Completion) (string, error)
	Models(ctx context.Context) ([]string, error)
}

// #endregion transport
