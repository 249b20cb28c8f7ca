package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/internal/services"
	"github.com/sharyyoru/medical-crm/pkg/models"
)

// saveWorkflowRequest is the editor payload for PUT /api/v1/workflows.
type saveWorkflowRequest struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Active      bool                     `json:"active"`
	FromStageID string                   `json:"from_stage_id"`
	ToStageID   string                   `json:"to_stage_id"`
	Pipeline    string                   `json:"pipeline"`
	Email       models.EmailActionConfig `json:"email"`
}

type workflowResponse struct {
	Workflow *models.Workflow        `json:"workflow"`
	Actions  []*models.WorkflowAction `json:"actions"`
}

// ListStages returns the deal-stage catalog.
// (GET /api/v1/stages)
func (s *Server) ListStages(c echo.Context) error {
	stages, err := s.Workflows.Stages(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, stages)
}

// ListWorkflows returns the listing-view summaries of all workflows.
// (GET /api/v1/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	summaries, err := s.Workflows.ListSummaries(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetWorkflow returns one workflow with its actions.
// (GET /api/v1/workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	workflow, actions, err := s.Workflows.GetWorkflow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, workflowResponse{Workflow: workflow, Actions: actions})
}

// PutWorkflow creates or updates a workflow together with its email action.
// (PUT /api/v1/workflows)
func (s *Server) PutWorkflow(c echo.Context) error {
	var req saveWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	workflow, action, err := s.Workflows.SaveWorkflow(c.Request().Context(), services.SaveWorkflowInput{
		ID:          req.ID,
		Name:        req.Name,
		Active:      req.Active,
		FromStageID: req.FromStageID,
		ToStageID:   req.ToStageID,
		Pipeline:    req.Pipeline,
		Email:       req.Email,
	})
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, workflowResponse{
		Workflow: workflow,
		Actions:  []*models.WorkflowAction{action},
	})
}

// DeleteWorkflow removes a workflow and all of its actions.
// (DELETE /api/v1/workflows/:id)
func (s *Server) DeleteWorkflow(c echo.Context) error {
	if err := s.Workflows.DeleteWorkflow(c.Request().Context(), c.Param("id")); err != nil {
		return s.serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
