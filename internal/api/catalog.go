package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/pkg/models"
)

// ListCategories returns all service categories ordered for display.
// (GET /api/v1/catalog/categories)
func (s *Server) ListCategories(c echo.Context) error {
	categories, err := s.Repo.ListCategories(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category at the end of the display order.
// (POST /api/v1/catalog/categories)
func (s *Server) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var category models.ServiceCategory
	if err := c.Bind(&category); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(category.Name) == "" {
		return errorJSON(c, http.StatusBadRequest, "Category name is required")
	}

	sortOrder, err := s.Repo.NextCategorySortOrder(ctx)
	if err != nil {
		return s.serviceError(c, err)
	}
	category.SortOrder = sortOrder

	if err := s.Repo.CreateCategory(ctx, &category); err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates a category's name, description or sort order.
// (PUT /api/v1/catalog/categories/:id)
func (s *Server) UpdateCategory(c echo.Context) error {
	var category models.ServiceCategory
	if err := c.Bind(&category); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	category.ID = c.Param("id")

	if err := s.Repo.UpdateCategory(c.Request().Context(), &category); err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes an empty category. Categories that still have
// services attached are rejected.
// (DELETE /api/v1/catalog/categories/:id)
func (s *Server) DeleteCategory(c echo.Context) error {
	err := s.Repo.DeleteCategory(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrCategoryInUse) {
		return errorJSON(c, http.StatusBadRequest, "Category has existing services")
	}
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListServices returns all services in the catalog.
// (GET /api/v1/catalog/services)
func (s *Server) ListServices(c echo.Context) error {
	list, err := s.Repo.ListServices(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateService adds a service to a category.
// (POST /api/v1/catalog/services)
func (s *Server) CreateService(c echo.Context) error {
	var service models.Service
	if err := c.Bind(&service); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(service.Name) == "" || service.CategoryID == "" {
		return errorJSON(c, http.StatusBadRequest, "Service name and category are required")
	}

	if err := s.Repo.CreateService(c.Request().Context(), &service); err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, service)
}

// UpdateService updates a service row.
// (PUT /api/v1/catalog/services/:id)
func (s *Server) UpdateService(c echo.Context) error {
	var service models.Service
	if err := c.Bind(&service); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	service.ID = c.Param("id")

	if err := s.Repo.UpdateService(c.Request().Context(), &service); err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, service)
}

// DeleteService removes a service.
// (DELETE /api/v1/catalog/services/:id)
func (s *Server) DeleteService(c echo.Context) error {
	if err := s.Repo.DeleteService(c.Request().Context(), c.Param("id")); err != nil {
		return s.serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
