// Package api contains the HTTP handlers for the clinic CRM service.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/internal/services"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Server holds the dependencies for the API server.
type Server struct {
	Repo      repository.Repository
	Workflows *services.WorkflowService
	Chat      *services.ChatService
	Email     *services.EmailService
	Crisalix  *services.CrisalixClient
	Logger    Logger
}

// NewServer creates a new Server.
func NewServer(repo repository.Repository, workflows *services.WorkflowService, chat *services.ChatService, email *services.EmailService, crisalix *services.CrisalixClient, logger Logger) *Server {
	return &Server{
		Repo:      repo,
		Workflows: workflows,
		Chat:      chat,
		Email:     email,
		Crisalix:  crisalix,
		Logger:    logger,
	}
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK).
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "medical-crm",
		Version:   "1.0.0",
	})
}

// errorJSON writes the `{"error": ...}` envelope the frontend expects.
func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// serviceError maps service and repository failures onto the error taxonomy:
// validation 400, not-found 404, empty upstream 502, everything else 500.
func (s *Server) serviceError(c echo.Context, err error) error {
	switch {
	case services.IsValidation(err):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrEmptyCompletion):
		return errorJSON(c, http.StatusBadGateway, err.Error())
	default:
		s.Logger.Error("request failed", "path", c.Path(), "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}
}
