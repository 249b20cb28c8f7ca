package services

import (
	"context"
	"strings"
	"unicode/utf8"
)

const chatSystemPrompt = "You are Aliice, an AI assistant embedded inside a medical CRM. " +
	"You help staff with bookings, post-op documentation, deals/pipelines, workflows, " +
	"and patient or insurance communication. Be concise, precise, and always respect " +
	"that this is an internal staff-facing tool."

// maxChatMessageLength caps each forwarded message to keep prompts bounded.
const maxChatMessageLength = 8000

const chatTemperature = 0.6

// ChatService proxies staff conversations to the completion API with a fixed
// system prompt.
type ChatService struct {
	client CompletionClient
}

// NewChatService creates a new ChatService.
func NewChatService(client CompletionClient) *ChatService {
	return &ChatService{client: client}
}

// Respond validates and forwards the conversation and returns the assistant
// reply. Messages are truncated to 8000 characters and whitespace-only
// messages are dropped before forwarding.
func (s *ChatService) Respond(ctx context.Context, messages []ChatMessage) (*ChatMessage, error) {
	if len(messages) == 0 {
		return nil, NewValidationError("Missing messages array")
	}

	trimmed := make([]ChatMessage, 0, len(messages)+1)
	trimmed = append(trimmed, ChatMessage{Role: "system", Content: chatSystemPrompt})
	kept := 0
	for _, msg := range messages {
		content := truncateRunes(msg.Content, maxChatMessageLength)
		if strings.TrimSpace(content) == "" {
			continue
		}
		trimmed = append(trimmed, ChatMessage{Role: msg.Role, Content: content})
		kept++
	}
	if kept == 0 {
		return nil, NewValidationError("Messages must contain non-empty content")
	}

	reply, err := s.client.Complete(ctx, CompletionRequest{
		Messages:    trimmed,
		Temperature: chatTemperature,
	})
	if err != nil {
		return nil, err
	}
	if reply.Content == "" {
		return nil, ErrEmptyCompletion
	}
	return reply, nil
}

// truncateRunes caps s at limit characters, never splitting a UTF-8 rune.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
