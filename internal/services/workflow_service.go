package services

import (
	"context"
	"strings"
	"time"

	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/internal/template"
	"github.com/sharyyoru/medical-crm/pkg/models"
)

// Logger defines the logging interface compatible with the application
// logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

const defaultWorkflowName = "Deal stage change automation"

// SaveWorkflowInput carries the editor form for a create-or-update save.
// An empty ID creates a new workflow.
type SaveWorkflowInput struct {
	ID          string
	Name        string
	Active      bool
	FromStageID string
	ToStageID   string
	Pipeline    string
	Email       models.EmailActionConfig
}

// WorkflowSummary is the listing-view row joining a workflow to its stages
// and email action.
type WorkflowSummary struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	TriggerType        string            `json:"trigger_type"`
	Active             bool              `json:"active"`
	FromStage          *models.DealStage `json:"from_stage"`
	ToStage            *models.DealStage `json:"to_stage"`
	Pipeline           *string           `json:"pipeline"`
	SubjectTemplate    *string           `json:"subject_template"`
	SendMode           models.SendMode   `json:"send_mode"`
	DelayMinutes       *int              `json:"delay_minutes"`
	RecurringEveryDays *int              `json:"recurring_every_days"`
	RecurringTimes     *int              `json:"recurring_times"`
}

// WorkflowService owns workflow definitions, their email actions and the
// stage-change trigger evaluation.
type WorkflowService struct {
	repo   repository.Repository
	logger Logger
	now    func() time.Time
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(repo repository.Repository, logger Logger) *WorkflowService {
	return &WorkflowService{repo: repo, logger: logger, now: time.Now}
}

// Stages returns the stage catalog in progression order.
func (s *WorkflowService) Stages(ctx context.Context) ([]*models.DealStage, error) {
	return s.repo.ListStages(ctx)
}

// SaveWorkflow validates and persists the workflow row and upserts its
// draft-email action. The validation runs before any write, so a rejected
// save leaves the store untouched.
func (s *WorkflowService) SaveWorkflow(ctx context.Context, in SaveWorkflowInput) (*models.Workflow, *models.WorkflowAction, error) {
	if strings.TrimSpace(in.ToStageID) == "" {
		return nil, nil, NewValidationError("Please select the 'to' stage.")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultWorkflowName
	}

	workflow := &models.Workflow{
		ID:          in.ID,
		Name:        name,
		TriggerType: models.TriggerDealStageChanged,
		Active:      in.Active,
		Config: models.WorkflowConfig{
			FromStageID: optional(in.FromStageID),
			ToStageID:   strings.TrimSpace(in.ToStageID),
			Pipeline:    optional(in.Pipeline),
		},
	}

	var err error
	if in.ID == "" {
		err = s.repo.CreateWorkflow(ctx, workflow)
	} else {
		err = s.repo.UpdateWorkflow(ctx, workflow)
	}
	if err != nil {
		return nil, nil, err
	}

	action, err := s.repo.UpsertEmailAction(ctx, workflow.ID, in.Email)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("workflow saved", "id", workflow.ID, "name", workflow.Name)
	return workflow, action, nil
}

// GetWorkflow returns one workflow with its actions.
func (s *WorkflowService) GetWorkflow(ctx context.Context, id string) (*models.Workflow, []*models.WorkflowAction, error) {
	workflow, err := s.repo.GetWorkflow(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	actions, err := s.repo.ListActions(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return workflow, actions, nil
}

// DeleteWorkflow removes a workflow and its actions.
func (s *WorkflowService) DeleteWorkflow(ctx context.Context, id string) error {
	return s.repo.DeleteWorkflow(ctx, id)
}

// ListSummaries joins all workflows to the stage catalog and their email
// actions for the listing view.
func (s *WorkflowService) ListSummaries(ctx context.Context) ([]*WorkflowSummary, error) {
	stages, err := s.repo.ListStages(ctx)
	if err != nil {
		return nil, err
	}
	stageByID := make(map[string]*models.DealStage, len(stages))
	for _, stage := range stages {
		stageByID[stage.ID] = stage
	}

	workflows, err := s.repo.ListWorkflows(ctx, "")
	if err != nil {
		return nil, err
	}
	actions, err := s.repo.ListAllActions(ctx)
	if err != nil {
		return nil, err
	}
	emailByWorkflow := make(map[string]*models.WorkflowAction)
	for _, action := range actions {
		if action.ActionType == models.ActionDraftEmailPatient {
			if _, ok := emailByWorkflow[action.WorkflowID]; !ok {
				emailByWorkflow[action.WorkflowID] = action
			}
		}
	}

	summaries := make([]*WorkflowSummary, 0, len(workflows))
	for _, w := range workflows {
		summary := &WorkflowSummary{
			ID:          w.ID,
			Name:        w.Name,
			TriggerType: w.TriggerType,
			Active:      w.Active,
			Pipeline:    w.Config.Pipeline,
			SendMode:    models.SendModeImmediate,
		}
		if w.Config.FromStageID != nil {
			summary.FromStage = stageByID[*w.Config.FromStageID]
		}
		if w.Config.ToStageID != "" {
			summary.ToStage = stageByID[w.Config.ToStageID]
		}
		if action, ok := emailByWorkflow[w.ID]; ok {
			cfg := action.Config
			if cfg.SubjectTemplate != "" {
				subject := cfg.SubjectTemplate
				summary.SubjectTemplate = &subject
			}
			summary.SendMode = cfg.EffectiveSendMode()
			summary.DelayMinutes = cfg.DelayMinutes
			summary.RecurringEveryDays = cfg.RecurringEveryDays
			summary.RecurringTimes = cfg.RecurringTimes
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// HandleStageChange evaluates a deal-stage-change event against the active
// workflows and persists one rendered draft per matching email action.
func (s *WorkflowService) HandleStageChange(ctx context.Context, event models.StageChangeEvent) ([]*models.EmailDraft, error) {
	if event.ToStageID == "" {
		return nil, NewValidationError("to_stage_id is required")
	}
	if event.PatientID == "" {
		return nil, NewValidationError("patient_id is required")
	}

	workflows, err := s.repo.MatchingWorkflows(ctx, event.ToStageID, event.FromStageID, event.Pipeline)
	if err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		return nil, nil
	}

	patient, err := s.repo.GetPatient(ctx, event.PatientID)
	if err != nil {
		return nil, err
	}

	pipeline := ""
	if event.Pipeline != nil {
		pipeline = *event.Pipeline
	}
	renderCtx := template.Context{
		"patient": {
			"first_name": patient.FirstName,
			"last_name":  patient.LastName,
			"full_name":  patient.FullName(),
			"email":      stringValue(patient.Email),
		},
		"deal": {
			"title":    event.DealTitle,
			"pipeline": pipeline,
		},
	}

	var drafts []*models.EmailDraft
	for _, workflow := range workflows {
		actions, err := s.repo.ListActions(ctx, workflow.ID)
		if err != nil {
			return nil, err
		}
		for _, action := range actions {
			if action.ActionType != models.ActionDraftEmailPatient {
				continue
			}
			draft := s.buildDraft(workflow, action.Config, event, renderCtx)
			if err := s.repo.CreateDraft(ctx, draft); err != nil {
				return nil, err
			}
			s.logger.Info("draft email created",
				"workflow_id", workflow.ID, "patient_id", patient.ID, "status", draft.Status)
			drafts = append(drafts, draft)
		}
	}
	return drafts, nil
}

// buildDraft renders the action templates and applies the send-mode
// schedule.
func (s *WorkflowService) buildDraft(workflow *models.Workflow, cfg models.EmailActionConfig, event models.StageChangeEvent, renderCtx template.Context) *models.EmailDraft {
	workflowID := workflow.ID
	draft := &models.EmailDraft{
		WorkflowID: &workflowID,
		PatientID:  event.PatientID,
		Subject:    template.Render(cfg.SubjectTemplate, renderCtx),
		Body:       template.Render(cfg.BodyTemplate, renderCtx),
		Status:     models.DraftStatusPending,
	}
	if event.DealID != "" {
		dealID := event.DealID
		draft.DealID = &dealID
	}

	now := s.now()
	switch cfg.EffectiveSendMode() {
	case models.SendModeDelay:
		if cfg.DelayMinutes != nil && *cfg.DelayMinutes > 0 {
			due := now.Add(time.Duration(*cfg.DelayMinutes) * time.Minute)
			draft.Status = models.DraftStatusScheduled
			draft.DueAt = &due
		}
	case models.SendModeRecurring:
		days := 0
		if cfg.RecurringEveryDays != nil {
			days = *cfg.RecurringEveryDays
		}
		if days > 0 {
			due := now.Add(time.Duration(days) * 24 * time.Hour)
			draft.Status = models.DraftStatusScheduled
			draft.DueAt = &due
			draft.RepeatDays = &days
			if cfg.RecurringTimes != nil && *cfg.RecurringTimes > 0 {
				remaining := *cfg.RecurringTimes
				draft.RemainingSends = &remaining
			}
		}
	}
	return draft
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
