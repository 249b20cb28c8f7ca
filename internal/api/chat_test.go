package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharyyoru/medical-crm/internal/services"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

type fakeCompletionClient struct {
	reply *services.ChatMessage
	err   error
}

func (f *fakeCompletionClient) Complete(ctx context.Context, req services.CompletionRequest) (*services.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func chatTestServer(client services.CompletionClient) *Server {
	return &Server{
		Chat:   services.NewChatService(client),
		Logger: noopLogger{},
	}
}

func postChat(s *Server, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = s.HandleChat(c)
	return rec
}

func TestHandleChatSuccess(t *testing.T) {
	s := chatTestServer(&fakeCompletionClient{
		reply: &services.ChatMessage{Role: "assistant", Content: "Booked for Tuesday."},
	})

	rec := postChat(s, `{"messages":[{"role":"user","content":"Book a slot"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"message":{"role":"assistant","content":"Booked for Tuesday."}}`,
		rec.Body.String())
}

func TestHandleChatMissingMessages(t *testing.T) {
	s := chatTestServer(&fakeCompletionClient{})

	rec := postChat(s, `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing messages array"}`, rec.Body.String())
}

func TestHandleChatEmptyUpstreamReply(t *testing.T) {
	s := chatTestServer(&fakeCompletionClient{err: services.ErrEmptyCompletion})

	rec := postChat(s, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
