package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

// CreateDraft inserts an email draft row. A missing ID is generated.
func (s *PostgresStore) CreateDraft(ctx context.Context, d *models.EmailDraft) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO email_drafts (id, workflow_id, patient_id, deal_id, subject, body,
			status, due_at, remaining_sends, repeat_days)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		d.ID, d.WorkflowID, d.PatientID, d.DealID, d.Subject, d.Body,
		d.Status, d.DueAt, d.RemainingSends, d.RepeatDays,
	).Scan(&d.CreatedAt)
}

// ListDrafts returns drafts for a patient, newest first. An empty patientID
// returns all drafts.
func (s *PostgresStore) ListDrafts(ctx context.Context, patientID string) ([]*models.EmailDraft, error) {
	query := `SELECT id, workflow_id, patient_id, deal_id, subject, body, status,
		due_at, remaining_sends, repeat_days, created_at FROM email_drafts`
	args := []any{}
	if patientID != "" {
		query += " WHERE patient_id = $1"
		args = append(args, patientID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDrafts(rows)
}

// DueDrafts returns scheduled drafts whose due time is at or before now.
func (s *PostgresStore) DueDrafts(ctx context.Context, now time.Time) ([]*models.EmailDraft, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, workflow_id, patient_id, deal_id, subject, body, status,
			due_at, remaining_sends, repeat_days, created_at
		 FROM email_drafts
		 WHERE status = $1 AND due_at IS NOT NULL AND due_at <= $2
		 ORDER BY due_at ASC`,
		models.DraftStatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDrafts(rows)
}

// UpdateDraft updates status and schedule fields of a draft.
func (s *PostgresStore) UpdateDraft(ctx context.Context, d *models.EmailDraft) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE email_drafts SET status = $1, due_at = $2, remaining_sends = $3
		 WHERE id = $4`,
		d.Status, d.DueAt, d.RemainingSends, d.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectDrafts(rows pgx.Rows) ([]*models.EmailDraft, error) {
	var drafts []*models.EmailDraft
	for rows.Next() {
		var d models.EmailDraft
		if err := rows.Scan(&d.ID, &d.WorkflowID, &d.PatientID, &d.DealID,
			&d.Subject, &d.Body, &d.Status, &d.DueAt, &d.RemainingSends,
			&d.RepeatDays, &d.CreatedAt); err != nil {
			return nil, err
		}
		drafts = append(drafts, &d)
	}
	return drafts, rows.Err()
}
