package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "schema.sql"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatal(err)
	}

	store := NewPostgresStore(pool)

	t.Run("workflow create, get, update", func(t *testing.T) {
		fromStage := "request_info"
		workflow := &models.Workflow{
			Name:        "Follow-up",
			TriggerType: models.TriggerDealStageChanged,
			Active:      true,
			Config: models.WorkflowConfig{
				FromStageID: &fromStage,
				ToStageID:   "request_processed",
			},
		}
		require.NoError(t, store.CreateWorkflow(ctx, workflow))
		require.NotEmpty(t, workflow.ID)

		got, err := store.GetWorkflow(ctx, workflow.ID)
		require.NoError(t, err)
		assert.Equal(t, "Follow-up", got.Name)
		require.NotNil(t, got.Config.FromStageID)
		assert.Equal(t, "request_info", *got.Config.FromStageID)
		assert.Equal(t, "request_processed", got.Config.ToStageID)

		got.Name = "Renamed"
		got.Active = false
		require.NoError(t, store.UpdateWorkflow(ctx, got))

		again, err := store.GetWorkflow(ctx, workflow.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", again.Name)
		assert.False(t, again.Active)

		list, err := store.ListWorkflows(ctx, models.TriggerDealStageChanged)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, store.DeleteWorkflow(ctx, workflow.ID))
	})

	t.Run("get unknown workflow", func(t *testing.T) {
		_, err := store.GetWorkflow(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("upsert email action is idempotent", func(t *testing.T) {
		workflow := &models.Workflow{
			Name:        "Upsert target",
			TriggerType: models.TriggerDealStageChanged,
			Active:      true,
			Config:      models.WorkflowConfig{ToStageID: "request_processed"},
		}
		require.NoError(t, store.CreateWorkflow(ctx, workflow))

		first, err := store.UpsertEmailAction(ctx, workflow.ID, models.EmailActionConfig{
			SubjectTemplate: "v1",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, first.SortOrder)

		second, err := store.UpsertEmailAction(ctx, workflow.ID, models.EmailActionConfig{
			SubjectTemplate: "v2",
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "v2", second.Config.SubjectTemplate)

		actions, err := store.ListActions(ctx, workflow.ID)
		require.NoError(t, err)
		require.Len(t, actions, 1, "repeated upserts must keep a single row")
		assert.Equal(t, "v2", actions[0].Config.SubjectTemplate)

		// a writer that races past the row lock is stopped by the unique
		// constraint rather than creating a second email action
		_, err = pool.Exec(ctx,
			`INSERT INTO workflow_actions (id, workflow_id, action_type, config, sort_order)
			 VALUES (gen_random_uuid(), $1, $2, '{}'::jsonb, 1)`,
			workflow.ID, models.ActionDraftEmailPatient)
		require.Error(t, err, "duplicate (workflow_id, action_type) must violate the unique constraint")
	})

	t.Run("delete workflow removes actions transactionally", func(t *testing.T) {
		workflow := &models.Workflow{
			Name:        "Doomed",
			TriggerType: models.TriggerDealStageChanged,
			Active:      true,
			Config:      models.WorkflowConfig{ToStageID: "request_processed"},
		}
		require.NoError(t, store.CreateWorkflow(ctx, workflow))
		_, err := store.UpsertEmailAction(ctx, workflow.ID, models.EmailActionConfig{})
		require.NoError(t, err)

		require.NoError(t, store.DeleteWorkflow(ctx, workflow.ID))

		actions, err := store.ListActions(ctx, workflow.ID)
		require.NoError(t, err)
		assert.Empty(t, actions)

		assert.ErrorIs(t, store.DeleteWorkflow(ctx, workflow.ID), ErrNotFound)
	})

	t.Run("matching workflows respects wildcards", func(t *testing.T) {
		pipeline := "surgery"
		fromStage := "request_info"
		strict := &models.Workflow{
			Name:        "Strict match",
			TriggerType: models.TriggerDealStageChanged,
			Active:      true,
			Config: models.WorkflowConfig{
				FromStageID: &fromStage,
				ToStageID:   "consultation_booked",
				Pipeline:    &pipeline,
			},
		}
		require.NoError(t, store.CreateWorkflow(ctx, strict))

		wildcard := &models.Workflow{
			Name:        "Any source",
			TriggerType: models.TriggerDealStageChanged,
			Active:      true,
			Config:      models.WorkflowConfig{ToStageID: "consultation_booked"},
		}
		require.NoError(t, store.CreateWorkflow(ctx, wildcard))

		inactive := &models.Workflow{
			Name:        "Disabled",
			TriggerType: models.TriggerDealStageChanged,
			Active:      false,
			Config:      models.WorkflowConfig{ToStageID: "consultation_booked"},
		}
		require.NoError(t, store.CreateWorkflow(ctx, inactive))

		matched, err := store.MatchingWorkflows(ctx, "consultation_booked", &fromStage, &pipeline)
		require.NoError(t, err)
		assert.Len(t, matched, 2)

		otherStage := "new_request"
		matched, err = store.MatchingWorkflows(ctx, "consultation_booked", &otherStage, nil)
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, "Any source", matched[0].Name)

		matched, err = store.MatchingWorkflows(ctx, "closed_lost", nil, nil)
		require.NoError(t, err)
		assert.Empty(t, matched)
	})

	t.Run("category delete guarded by services", func(t *testing.T) {
		category := &models.ServiceCategory{Name: "Consultations", SortOrder: 1}
		require.NoError(t, store.CreateCategory(ctx, category))

		next, err := store.NextCategorySortOrder(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, next)

		service := &models.Service{
			CategoryID: category.ID,
			Name:       "Initial consultation",
			IsActive:   true,
		}
		require.NoError(t, store.CreateService(ctx, service))

		assert.ErrorIs(t, store.DeleteCategory(ctx, category.ID), ErrCategoryInUse)

		require.NoError(t, store.DeleteService(ctx, service.ID))
		require.NoError(t, store.DeleteCategory(ctx, category.ID))
	})

	t.Run("patients, drafts and due scan", func(t *testing.T) {
		email := "amelie.durand@example.com"
		patient := &models.Patient{FirstName: "Amélie", LastName: "Durand", Email: &email}
		require.NoError(t, store.CreatePatient(ctx, patient))

		found, err := store.ListPatients(ctx, "durand", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, patient.ID, found[0].ID)

		due := time.Now().Add(-time.Minute)
		draft := &models.EmailDraft{
			PatientID: patient.ID,
			Subject:   "Check-in",
			Body:      "How are you?",
			Status:    models.DraftStatusScheduled,
			DueAt:     &due,
		}
		require.NoError(t, store.CreateDraft(ctx, draft))

		dueDrafts, err := store.DueDrafts(ctx, time.Now())
		require.NoError(t, err)
		require.Len(t, dueDrafts, 1)
		assert.Equal(t, draft.ID, dueDrafts[0].ID)

		dueDrafts[0].Status = models.DraftStatusPending
		dueDrafts[0].DueAt = nil
		require.NoError(t, store.UpdateDraft(ctx, dueDrafts[0]))

		none, err := store.DueDrafts(ctx, time.Now())
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
