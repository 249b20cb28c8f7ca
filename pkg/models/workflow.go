package models

import (
	"time"
)

// Trigger types understood by the workflow engine.
const (
	TriggerDealStageChanged = "deal_stage_changed"
)

// Action types attachable to a workflow.
const (
	ActionDraftEmailPatient = "draft_email_patient"
)

// SendMode controls when a drafted email is released.
type SendMode string

const (
	SendModeImmediate SendMode = "immediate"
	SendModeDelay     SendMode = "delay"
	SendModeRecurring SendMode = "recurring"
)

// DealStage is a named step in a deal pipeline. Stage rows are created by the
// pipeline admin tooling and are read-only from the workflow's perspective.
type DealStage struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Type      string `json:"type" db:"type"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// WorkflowConfig is the trigger configuration stored on the workflow row.
// A nil FromStageID means "any source stage"; a nil Pipeline means "any
// pipeline". ToStageID is required for stage-changed triggers.
type WorkflowConfig struct {
	FromStageID *string `json:"from_stage_id"`
	ToStageID   string  `json:"to_stage_id"`
	Pipeline    *string `json:"pipeline"`
}

// Workflow binds a trigger condition to an activation state and a set of
// actions.
type Workflow struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	TriggerType string         `json:"trigger_type" db:"trigger_type"`
	Active      bool           `json:"active" db:"active"`
	Config      WorkflowConfig `json:"config" db:"config"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// EmailActionConfig is the full schema of the draft-email action config.
// The schedule fields default to an immediate send when absent.
type EmailActionConfig struct {
	SubjectTemplate    string   `json:"subject_template"`
	BodyTemplate       string   `json:"body_template"`
	SendMode           SendMode `json:"send_mode,omitempty"`
	DelayMinutes       *int     `json:"delay_minutes,omitempty"`
	RecurringEveryDays *int     `json:"recurring_every_days,omitempty"`
	RecurringTimes     *int     `json:"recurring_times,omitempty"`
}

// EffectiveSendMode normalizes an absent send mode to immediate.
func (c EmailActionConfig) EffectiveSendMode() SendMode {
	if c.SendMode == "" {
		return SendModeImmediate
	}
	return c.SendMode
}

// WorkflowAction is a step executed when a workflow fires. Actions belong to
// exactly one workflow; sort_order defines execution order.
type WorkflowAction struct {
	ID         string            `json:"id" db:"id"`
	WorkflowID string            `json:"workflow_id" db:"workflow_id"`
	ActionType string            `json:"action_type" db:"action_type"`
	Config     EmailActionConfig `json:"config" db:"config"`
	SortOrder  int               `json:"sort_order" db:"sort_order"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// StageChangeEvent is emitted by the deal pipeline when a deal moves between
// stages.
type StageChangeEvent struct {
	DealID      string  `json:"deal_id"`
	DealTitle   string  `json:"deal_title"`
	PatientID   string  `json:"patient_id"`
	Pipeline    *string `json:"pipeline,omitempty"`
	FromStageID *string `json:"from_stage_id,omitempty"`
	ToStageID   string  `json:"to_stage_id"`
}
