package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletionClient records the last request and returns a canned reply.
type fakeCompletionClient struct {
	lastRequest CompletionRequest
	reply       *ChatMessage
	err         error
}

func (f *fakeCompletionClient) Complete(ctx context.Context, req CompletionRequest) (*ChatMessage, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func TestChatRespond(t *testing.T) {
	client := &fakeCompletionClient{reply: &ChatMessage{Role: "assistant", Content: "hello"}}
	svc := NewChatService(client)

	reply, err := svc.Respond(context.Background(), []ChatMessage{
		{Role: "user", Content: "When is the next consultation slot?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Content)

	// system prompt is prepended before the user turns
	require.Len(t, client.lastRequest.Messages, 2)
	assert.Equal(t, "system", client.lastRequest.Messages[0].Role)
	assert.Equal(t, "user", client.lastRequest.Messages[1].Role)
	assert.InDelta(t, 0.6, client.lastRequest.Temperature, 0.001)
}

func TestChatRespondMissingMessages(t *testing.T) {
	svc := NewChatService(&fakeCompletionClient{})

	_, err := svc.Respond(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Missing messages array", err.Error())
}

func TestChatRespondFiltersWhitespaceOnly(t *testing.T) {
	svc := NewChatService(&fakeCompletionClient{})

	_, err := svc.Respond(context.Background(), []ChatMessage{
		{Role: "user", Content: "   \n\t "},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Messages must contain non-empty content", err.Error())
}

func TestChatRespondTruncatesLongMessages(t *testing.T) {
	client := &fakeCompletionClient{reply: &ChatMessage{Role: "assistant", Content: "ok"}}
	svc := NewChatService(client)

	long := strings.Repeat("a", maxChatMessageLength+500)
	_, err := svc.Respond(context.Background(), []ChatMessage{{Role: "user", Content: long}})
	require.NoError(t, err)

	forwarded := client.lastRequest.Messages[1].Content
	assert.Len(t, forwarded, maxChatMessageLength)
}

func TestChatRespondTruncatesByCharactersNotBytes(t *testing.T) {
	client := &fakeCompletionClient{reply: &ChatMessage{Role: "assistant", Content: "ok"}}
	svc := NewChatService(client)

	// two bytes per rune, so the byte length is well past the cap
	long := strings.Repeat("é", maxChatMessageLength+500)
	_, err := svc.Respond(context.Background(), []ChatMessage{{Role: "user", Content: long}})
	require.NoError(t, err)

	forwarded := client.lastRequest.Messages[1].Content
	assert.Equal(t, maxChatMessageLength, utf8.RuneCountInString(forwarded))
	assert.True(t, utf8.ValidString(forwarded), "truncation must not split a rune")
	assert.Equal(t, strings.Repeat("é", maxChatMessageLength), forwarded)
}

func TestChatRespondEmptyUpstreamReply(t *testing.T) {
	client := &fakeCompletionClient{reply: &ChatMessage{Role: "assistant", Content: ""}}
	svc := NewChatService(client)

	_, err := svc.Respond(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}
