package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sharyyoru/medical-crm/internal/logging"
	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/pkg/models"
)

// Pipeline stages of the clinic sales funnel, in progression order.
var seedStages = []struct {
	ID   string
	Name string
	Type string
}{
	{"new_request", "New request", "open"},
	{"request_info", "Request info", "open"},
	{"request_processed", "Request processed", "open"},
	{"consultation_booked", "Consultation booked", "open"},
	{"treatment_agreed", "Treatment agreed", "won"},
	{"closed_lost", "Closed lost", "lost"},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load development seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, logger, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := repository.NewPostgresStore(pool)

			for _, stage := range seedStages {
				_, err := pool.Exec(ctx,
					`INSERT INTO deal_stages (id, name, type, sort_order)
					 VALUES ($1, $2, $3, (SELECT coalesce(max(sort_order), 0) + 1 FROM deal_stages))
					 ON CONFLICT (id) DO NOTHING`,
					stage.ID, stage.Name, stage.Type)
				if err != nil {
					return err
				}
			}
			logger.Info("Seeded deal stages", "count", len(seedStages))

			existing, err := store.ListWorkflows(ctx, models.TriggerDealStageChanged)
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				if err := seedWorkflow(ctx, store); err != nil {
					return err
				}
				logger.Info("Seeded demo workflow")
			} else {
				logger.Info("Skipping workflow seed, workflows exist", "count", len(existing))
			}

			if err := seedCatalog(ctx, store, logger); err != nil {
				return err
			}

			if err := seedPatients(ctx, store, logger); err != nil {
				return err
			}

			logger.Info("Seeding complete!")
			return nil
		},
	}
}

func seedWorkflow(ctx context.Context, store repository.Repository) error {
	fromStage := "request_info"
	workflow := &models.Workflow{
		Name:        "Request processed follow-up",
		TriggerType: models.TriggerDealStageChanged,
		Active:      true,
		Config: models.WorkflowConfig{
			FromStageID: &fromStage,
			ToStageID:   "request_processed",
		},
	}
	if err := store.CreateWorkflow(ctx, workflow); err != nil {
		return err
	}

	_, err := store.UpsertEmailAction(ctx, workflow.ID, models.EmailActionConfig{
		SubjectTemplate: "Your request at Maison Tóā Clinic",
		BodyTemplate: "Dear {{patient.first_name}},\n\n" +
			"Your request \"{{deal.title}}\" has been processed. " +
			"We will be in touch shortly with the next steps.\n",
		SendMode: models.SendModeImmediate,
	})
	return err
}

func seedCatalog(ctx context.Context, store repository.Repository, logger *logging.Logger) error {
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(categories) > 0 {
		logger.Info("Skipping catalog seed, categories exist", "count", len(categories))
		return nil
	}

	consultations := &models.ServiceCategory{Name: "Consultations", SortOrder: 1}
	if err := store.CreateCategory(ctx, consultations); err != nil {
		return err
	}
	surgery := &models.ServiceCategory{Name: "Surgery", SortOrder: 2}
	if err := store.CreateCategory(ctx, surgery); err != nil {
		return err
	}

	price := 150.0
	if err := store.CreateService(ctx, &models.Service{
		CategoryID: consultations.ID,
		Name:       "Initial consultation",
		IsActive:   true,
		BasePrice:  &price,
	}); err != nil {
		return err
	}

	logger.Info("Seeded service catalog")
	return nil
}

func seedPatients(ctx context.Context, store repository.Repository, logger *logging.Logger) error {
	patients, err := store.ListPatients(ctx, "", 1)
	if err != nil {
		return err
	}
	if len(patients) > 0 {
		logger.Info("Skipping patient seed, patients exist")
		return nil
	}

	email := "amelie.durand@example.com"
	phone := "+41 79 000 00 00"
	patient := &models.Patient{
		FirstName: "Amélie",
		LastName:  "Durand",
		Email:     &email,
		Phone:     &phone,
	}
	if err := store.CreatePatient(ctx, patient); err != nil {
		return err
	}

	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	end := start.Add(45 * time.Minute)
	if err := store.CreateAppointment(ctx, &models.Appointment{
		PatientID: patient.ID,
		StartTime: start,
		EndTime:   &end,
		Status:    models.AppointmentStatusScheduled,
	}); err != nil {
		return err
	}

	logger.Info("Seeded demo patient", "id", patient.ID)
	return nil
}
