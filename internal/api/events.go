package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

// HandleStageChangeEvent accepts a deal-stage-change notification from the
// pipeline and returns the drafts it produced.
// (POST /api/v1/events/deal-stage-changed)
func (s *Server) HandleStageChangeEvent(c echo.Context) error {
	var event models.StageChangeEvent
	if err := c.Bind(&event); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	drafts, err := s.Workflows.HandleStageChange(c.Request().Context(), event)
	if err != nil {
		return s.serviceError(c, err)
	}
	if drafts == nil {
		drafts = []*models.EmailDraft{}
	}
	return c.JSON(http.StatusOK, map[string]any{"drafts": drafts})
}

// ListDrafts returns email drafts, optionally filtered by patient.
// (GET /api/v1/drafts)
func (s *Server) ListDrafts(c echo.Context) error {
	drafts, err := s.Repo.ListDrafts(c.Request().Context(), c.QueryParam("patient_id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, drafts)
}
