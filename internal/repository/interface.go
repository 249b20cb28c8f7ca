package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrCategoryInUse is returned when deleting a category that still has
// services attached.
var ErrCategoryInUse = errors.New("category has existing services")

// StageStore provides read access to the deal-stage catalog. Stage rows are
// created elsewhere and are read-only here.
type StageStore interface {
	ListStages(ctx context.Context) ([]*models.DealStage, error)
}

// WorkflowStore provides CRUD over workflow definitions and their actions.
type WorkflowStore interface {
	CreateWorkflow(ctx context.Context, w *models.Workflow) error
	UpdateWorkflow(ctx context.Context, w *models.Workflow) error
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	// ListWorkflows returns workflows ordered by creation time ascending.
	// An empty triggerType returns all workflows.
	ListWorkflows(ctx context.Context, triggerType string) ([]*models.Workflow, error)
	// DeleteWorkflow removes a workflow and all of its actions in a single
	// transaction.
	DeleteWorkflow(ctx context.Context, id string) error
	// MatchingWorkflows returns active stage-changed workflows whose config
	// matches the given transition.
	MatchingWorkflows(ctx context.Context, toStageID string, fromStageID, pipeline *string) ([]*models.Workflow, error)

	// UpsertEmailAction creates or updates the single draft-email action of
	// a workflow. The query-then-branch runs inside a transaction so
	// concurrent saves cannot create duplicates.
	UpsertEmailAction(ctx context.Context, workflowID string, cfg models.EmailActionConfig) (*models.WorkflowAction, error)
	ListActions(ctx context.Context, workflowID string) ([]*models.WorkflowAction, error)
	ListAllActions(ctx context.Context) ([]*models.WorkflowAction, error)
}

// CatalogStore provides CRUD over service categories and services.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]*models.ServiceCategory, error)
	CreateCategory(ctx context.Context, c *models.ServiceCategory) error
	UpdateCategory(ctx context.Context, c *models.ServiceCategory) error
	// DeleteCategory removes a category. It fails when services still
	// reference the category.
	DeleteCategory(ctx context.Context, id string) error
	// NextCategorySortOrder returns max(sort_order)+1, or 1 for an empty
	// catalog.
	NextCategorySortOrder(ctx context.Context) (int, error)

	ListServices(ctx context.Context) ([]*models.Service, error)
	CreateService(ctx context.Context, s *models.Service) error
	UpdateService(ctx context.Context, s *models.Service) error
	DeleteService(ctx context.Context, id string) error
}

// PatientStore provides access to patient and appointment records.
type PatientStore interface {
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	ListPatients(ctx context.Context, search string, limit int) ([]*models.Patient, error)
	CreatePatient(ctx context.Context, p *models.Patient) error
	UpdatePatient(ctx context.Context, p *models.Patient) error
	ListInsurances(ctx context.Context, patientID string) ([]*models.PatientInsurance, error)

	// ListAppointments returns appointments starting within [from, to],
	// ordered by start time, with the patient name columns joined in.
	ListAppointments(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)
	CreateAppointment(ctx context.Context, a *models.Appointment) error
}

// DraftStore persists rendered workflow email drafts.
type DraftStore interface {
	CreateDraft(ctx context.Context, d *models.EmailDraft) error
	ListDrafts(ctx context.Context, patientID string) ([]*models.EmailDraft, error)
	// DueDrafts returns scheduled drafts whose due time is at or before now.
	DueDrafts(ctx context.Context, now time.Time) ([]*models.EmailDraft, error)
	UpdateDraft(ctx context.Context, d *models.EmailDraft) error
}

// UserStore provides read access to the staff directory.
type UserStore interface {
	// ListUsers returns up to limit directory users.
	ListUsers(ctx context.Context, limit int) ([]*models.User, error)
}

// Repository aggregates all stores backed by a single database.
type Repository interface {
	StageStore
	WorkflowStore
	CatalogStore
	PatientStore
	DraftStore
	UserStore
}
