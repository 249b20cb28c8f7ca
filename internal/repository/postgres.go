package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

// PostgresStore is a PostgreSQL implementation of the Repository interface.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListStages returns all deal stages ordered by sort order.
func (s *PostgresStore) ListStages(ctx context.Context) ([]*models.DealStage, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name, type, sort_order FROM deal_stages ORDER BY sort_order ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []*models.DealStage
	for rows.Next() {
		var stage models.DealStage
		if err := rows.Scan(&stage.ID, &stage.Name, &stage.Type, &stage.SortOrder); err != nil {
			return nil, err
		}
		stages = append(stages, &stage)
	}
	return stages, rows.Err()
}

// CreateWorkflow inserts a workflow row. A missing ID is generated.
func (s *PostgresStore) CreateWorkflow(ctx context.Context, w *models.Workflow) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	cfg, err := json.Marshal(w.Config)
	if err != nil {
		return fmt.Errorf("failed to encode workflow config: %w", err)
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO workflows (id, name, trigger_type, active, config)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		w.ID, w.Name, w.TriggerType, w.Active, cfg,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
}

// UpdateWorkflow updates name, active flag and config of an existing
// workflow. Returns ErrNotFound when the id is unknown.
func (s *PostgresStore) UpdateWorkflow(ctx context.Context, w *models.Workflow) error {
	cfg, err := json.Marshal(w.Config)
	if err != nil {
		return fmt.Errorf("failed to encode workflow config: %w", err)
	}
	err = s.db.QueryRow(ctx,
		`UPDATE workflows SET name = $1, active = $2, config = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		w.Name, w.Active, cfg, w.ID,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// GetWorkflow retrieves a workflow by id.
func (s *PostgresStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	w, err := scanWorkflow(s.db.QueryRow(ctx,
		`SELECT id, name, trigger_type, active, config, created_at, updated_at
		 FROM workflows WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return w, err
}

// ListWorkflows returns workflows ordered by creation time ascending. An
// empty triggerType returns all workflows.
func (s *PostgresStore) ListWorkflows(ctx context.Context, triggerType string) ([]*models.Workflow, error) {
	query := `SELECT id, name, trigger_type, active, config, created_at, updated_at
		 FROM workflows`
	args := []any{}
	if triggerType != "" {
		query += " WHERE trigger_type = $1"
		args = append(args, triggerType)
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*models.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}

// DeleteWorkflow removes a workflow and all of its actions in one
// transaction, so a failure cannot leave orphaned action rows.
func (s *PostgresStore) DeleteWorkflow(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM workflow_actions WHERE workflow_id = $1", id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// MatchingWorkflows returns active stage-changed workflows whose trigger
// config matches the given transition. A null from_stage_id in the config
// matches any source stage; a null pipeline matches any pipeline.
func (s *PostgresStore) MatchingWorkflows(ctx context.Context, toStageID string, fromStageID, pipeline *string) ([]*models.Workflow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, trigger_type, active, config, created_at, updated_at
		 FROM workflows
		 WHERE active
		   AND trigger_type = $1
		   AND config->>'to_stage_id' = $2
		   AND (config->>'from_stage_id' IS NULL OR config->>'from_stage_id' = $3)
		   AND (config->>'pipeline' IS NULL OR config->>'pipeline' = $4)
		 ORDER BY created_at ASC`,
		models.TriggerDealStageChanged, toStageID, fromStageID, pipeline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*models.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}

// UpsertEmailAction creates or updates the single draft-email action of a
// workflow. The lookup and the write run in one transaction so two
// concurrent saves cannot create duplicate (workflow_id, action_type) rows.
func (s *PostgresStore) UpsertEmailAction(ctx context.Context, workflowID string, cfg models.EmailActionConfig) (*models.WorkflowAction, error) {
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action config: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	action := &models.WorkflowAction{
		WorkflowID: workflowID,
		ActionType: models.ActionDraftEmailPatient,
		Config:     cfg,
	}

	err = tx.QueryRow(ctx,
		`SELECT id, sort_order FROM workflow_actions
		 WHERE workflow_id = $1 AND action_type = $2
		 FOR UPDATE`,
		workflowID, models.ActionDraftEmailPatient,
	).Scan(&action.ID, &action.SortOrder)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// FOR UPDATE cannot lock a row that does not exist yet, so two
		// concurrent first saves both reach this branch. The unique
		// constraint on (workflow_id, action_type) collapses them onto a
		// single row via ON CONFLICT.
		err = tx.QueryRow(ctx,
			`INSERT INTO workflow_actions (id, workflow_id, action_type, config, sort_order)
			 VALUES ($1, $2, $3, $4, 1)
			 ON CONFLICT (workflow_id, action_type) DO UPDATE SET config = EXCLUDED.config
			 RETURNING id, sort_order, created_at`,
			uuid.New().String(), workflowID, models.ActionDraftEmailPatient, encoded,
		).Scan(&action.ID, &action.SortOrder, &action.CreatedAt)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		err = tx.QueryRow(ctx,
			`UPDATE workflow_actions SET config = $1 WHERE id = $2 RETURNING created_at`,
			encoded, action.ID,
		).Scan(&action.CreatedAt)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return action, nil
}

// ListActions returns a workflow's actions ordered by sort order.
func (s *PostgresStore) ListActions(ctx context.Context, workflowID string) ([]*models.WorkflowAction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, workflow_id, action_type, config, sort_order, created_at
		 FROM workflow_actions WHERE workflow_id = $1 ORDER BY sort_order ASC`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActions(rows)
}

// ListAllActions returns every action ordered by sort order, for listing
// views that join actions to workflows in memory.
func (s *PostgresStore) ListAllActions(ctx context.Context) ([]*models.WorkflowAction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, workflow_id, action_type, config, sort_order, created_at
		 FROM workflow_actions ORDER BY sort_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActions(rows)
}

func collectActions(rows pgx.Rows) ([]*models.WorkflowAction, error) {
	var actions []*models.WorkflowAction
	for rows.Next() {
		var action models.WorkflowAction
		var cfg []byte
		if err := rows.Scan(&action.ID, &action.WorkflowID, &action.ActionType, &cfg, &action.SortOrder, &action.CreatedAt); err != nil {
			return nil, err
		}
		if len(cfg) > 0 {
			if err := json.Unmarshal(cfg, &action.Config); err != nil {
				return nil, fmt.Errorf("failed to decode action config: %w", err)
			}
		}
		actions = append(actions, &action)
	}
	return actions, rows.Err()
}

func scanWorkflow(row pgx.Row) (*models.Workflow, error) {
	var w models.Workflow
	var cfg []byte
	if err := row.Scan(&w.ID, &w.Name, &w.TriggerType, &w.Active, &cfg, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &w.Config); err != nil {
			return nil, fmt.Errorf("failed to decode workflow config: %w", err)
		}
	}
	return &w, nil
}
