package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/internal/services"
)

type chatRequest struct {
	Messages []services.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Message *services.ChatMessage `json:"message"`
}

// HandleChat forwards a staff conversation to the completion API and returns
// the assistant reply.
// (POST /api/v1/chat)
func (s *Server) HandleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Missing messages array")
	}

	reply, err := s.Chat.Respond(c.Request().Context(), req.Messages)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, chatResponse{Message: reply})
}
