package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

// ListAppointments returns appointments starting within the requested range.
// Defaults to the next seven days when no range is given.
// (GET /api/v1/appointments?from=RFC3339&to=RFC3339)
func (s *Server) ListAppointments(c echo.Context) error {
	now := time.Now()
	from := now
	to := now.Add(7 * 24 * time.Hour)

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "Invalid 'from' timestamp")
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "Invalid 'to' timestamp")
		}
		to = parsed
	}
	if to.Before(from) {
		return errorJSON(c, http.StatusBadRequest, "'to' must not precede 'from'")
	}

	appointments, err := s.Repo.ListAppointments(c.Request().Context(), from, to)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, appointments)
}

// CreateAppointment books an appointment for a patient.
// (POST /api/v1/appointments)
func (s *Server) CreateAppointment(c echo.Context) error {
	var appointment models.Appointment
	if err := c.Bind(&appointment); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if appointment.PatientID == "" || appointment.StartTime.IsZero() {
		return errorJSON(c, http.StatusBadRequest, "patient_id and start_time are required")
	}

	if err := s.Repo.CreateAppointment(c.Request().Context(), &appointment); err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, appointment)
}
