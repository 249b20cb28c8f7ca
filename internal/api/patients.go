package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

const defaultPatientLimit = 50

// ListPatients returns patients, optionally filtered by a search string over
// name and email.
// (GET /api/v1/patients)
func (s *Server) ListPatients(c echo.Context) error {
	limit := defaultPatientLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return errorJSON(c, http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}

	patients, err := s.Repo.ListPatients(c.Request().Context(), c.QueryParam("search"), limit)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, patients)
}

// GetPatient returns one patient with their insurance rows newest-first.
// (GET /api/v1/patients/:id)
func (s *Server) GetPatient(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	patient, err := s.Repo.GetPatient(ctx, id)
	if err != nil {
		return s.serviceError(c, err)
	}
	insurances, err := s.Repo.ListInsurances(ctx, id)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"patient":    patient,
		"insurances": insurances,
	})
}

// CreatePatient adds a patient record.
// (POST /api/v1/patients)
func (s *Server) CreatePatient(c echo.Context) error {
	var patient models.Patient
	if err := c.Bind(&patient); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(patient.FirstName) == "" && strings.TrimSpace(patient.LastName) == "" {
		return errorJSON(c, http.StatusBadRequest, "Patient name is required")
	}

	if err := s.Repo.CreatePatient(c.Request().Context(), &patient); err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, patient)
}

// UpdatePatient updates a patient record.
// (PUT /api/v1/patients/:id)
func (s *Server) UpdatePatient(c echo.Context) error {
	var patient models.Patient
	if err := c.Bind(&patient); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	patient.ID = c.Param("id")

	if err := s.Repo.UpdatePatient(c.Request().Context(), &patient); err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, patient)
}

// generateEmailRequest is the payload for the one-off email drafter.
type generateEmailRequest struct {
	PatientID   string `json:"patientId"`
	Description string `json:"description"`
	Tone        string `json:"tone"`
}

// GenerateEmail drafts a one-off email to a patient via the completion API.
// (POST /api/v1/patients/generate-email)
func (s *Server) GenerateEmail(c echo.Context) error {
	var req generateEmailRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	result, err := s.Email.GeneratePatientEmail(c.Request().Context(), req.PatientID, req.Description, req.Tone)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
