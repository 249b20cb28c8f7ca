package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const userListLimit = 100

// ListUsers returns the staff directory, flattened to id/full_name/email.
// (GET /api/v1/users)
func (s *Server) ListUsers(c echo.Context) error {
	users, err := s.Repo.ListUsers(c.Request().Context(), userListLimit)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}
