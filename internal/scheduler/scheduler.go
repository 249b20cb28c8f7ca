package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/pkg/models"
)

// Logger is the logging interface the scheduler reports through.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Scheduler releases scheduled email drafts once their due time passes.
// Released drafts become pending so staff see them in the review queue;
// recurring drafts re-arm until their remaining-sends counter runs out.
type Scheduler struct {
	drafts repository.DraftStore
	logger Logger
	cron   *cron.Cron
	now    func() time.Time
}

// New creates a Scheduler over the given draft store.
func New(drafts repository.DraftStore, logger Logger) *Scheduler {
	return &Scheduler{
		drafts: drafts,
		logger: logger,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start begins the one-minute release loop. It returns immediately; the
// loop runs until Stop is called.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.ReleaseDue(ctx); err != nil {
			s.logger.Error("draft release tick failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("draft scheduler started")
	return nil
}

// Stop halts the release loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ReleaseDue moves every scheduled draft whose due time has passed to
// pending. A recurring draft with sends remaining is re-armed at
// due+repeat_days instead of being released a final time.
func (s *Scheduler) ReleaseDue(ctx context.Context) error {
	now := s.now()
	due, err := s.drafts.DueDrafts(ctx, now)
	if err != nil {
		return err
	}
	for _, draft := range due {
		if err := s.release(ctx, draft, now); err != nil {
			s.logger.Error("failed to release draft", "draft_id", draft.ID, "error", err)
			continue
		}
	}
	return nil
}

// release moves the draft to pending. A recurring draft with more than one
// send left also gets a fresh scheduled copy armed one interval out.
func (s *Scheduler) release(ctx context.Context, draft *models.EmailDraft, now time.Time) error {
	recurring := draft.RepeatDays != nil && *draft.RepeatDays > 0 &&
		draft.RemainingSends != nil && *draft.RemainingSends > 1

	draft.Status = models.DraftStatusPending
	draft.DueAt = nil
	if err := s.drafts.UpdateDraft(ctx, draft); err != nil {
		return err
	}
	s.logger.Info("draft released", "draft_id", draft.ID)

	if !recurring {
		return nil
	}

	remaining := *draft.RemainingSends - 1
	next := now.Add(time.Duration(*draft.RepeatDays) * 24 * time.Hour)
	rearmed := &models.EmailDraft{
		WorkflowID:     draft.WorkflowID,
		PatientID:      draft.PatientID,
		DealID:         draft.DealID,
		Subject:        draft.Subject,
		Body:           draft.Body,
		Status:         models.DraftStatusScheduled,
		DueAt:          &next,
		RemainingSends: &remaining,
		RepeatDays:     draft.RepeatDays,
	}
	if err := s.drafts.CreateDraft(ctx, rearmed); err != nil {
		return err
	}
	s.logger.Info("recurring draft re-armed",
		"draft_id", rearmed.ID, "remaining", remaining, "next_due", next.Format(time.RFC3339))
	return nil
}
