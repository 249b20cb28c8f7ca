package services

import "context"

// ChatMessage is one turn of a completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single-shot chat-completion request.
type CompletionRequest struct {
	Messages    []ChatMessage
	Temperature float32
}

// CompletionClient is an interface for the hosted language-model API.
type CompletionClient interface {
	// Complete sends the conversation and returns the assistant message.
	Complete(ctx context.Context, req CompletionRequest) (*ChatMessage, error)
}
