package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// fakeDraftStore keeps drafts in a slice and serves due ones by scanning it.
type fakeDraftStore struct {
	drafts []*models.EmailDraft
	nextID int
}

func (f *fakeDraftStore) CreateDraft(ctx context.Context, d *models.EmailDraft) error {
	f.nextID++
	d.ID = "draft-" + string(rune('0'+f.nextID))
	f.drafts = append(f.drafts, d)
	return nil
}

func (f *fakeDraftStore) ListDrafts(ctx context.Context, patientID string) ([]*models.EmailDraft, error) {
	return f.drafts, nil
}

func (f *fakeDraftStore) DueDrafts(ctx context.Context, now time.Time) ([]*models.EmailDraft, error) {
	var due []*models.EmailDraft
	for _, d := range f.drafts {
		if d.Status == models.DraftStatusScheduled && d.DueAt != nil && !d.DueAt.After(now) {
			due = append(due, d)
		}
	}
	return due, nil
}

func (f *fakeDraftStore) UpdateDraft(ctx context.Context, d *models.EmailDraft) error {
	for i, existing := range f.drafts {
		if existing.ID == d.ID {
			f.drafts[i] = d
			return nil
		}
	}
	return nil
}

func scheduledDraft(id string, due time.Time) *models.EmailDraft {
	return &models.EmailDraft{
		ID:      id,
		Subject: "Check-in",
		Body:    "How are you feeling?",
		Status:  models.DraftStatusScheduled,
		DueAt:   &due,
	}
}

func TestReleaseDueMovesDraftToPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeDraftStore{}
	store.drafts = append(store.drafts, scheduledDraft("d1", now.Add(-time.Minute)))
	store.drafts = append(store.drafts, scheduledDraft("d2", now.Add(time.Hour)))

	s := New(store, noopLogger{})
	s.now = func() time.Time { return now }

	require.NoError(t, s.ReleaseDue(context.Background()))

	assert.Equal(t, models.DraftStatusPending, store.drafts[0].Status)
	assert.Nil(t, store.drafts[0].DueAt)
	// not yet due
	assert.Equal(t, models.DraftStatusScheduled, store.drafts[1].Status)
}

func TestReleaseDueRearmsRecurringDraft(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repeat, remaining := 7, 3
	draft := scheduledDraft("d1", now.Add(-time.Minute))
	draft.RepeatDays = &repeat
	draft.RemainingSends = &remaining

	store := &fakeDraftStore{drafts: []*models.EmailDraft{draft}}
	s := New(store, noopLogger{})
	s.now = func() time.Time { return now }

	require.NoError(t, s.ReleaseDue(context.Background()))

	require.Len(t, store.drafts, 2)
	assert.Equal(t, models.DraftStatusPending, store.drafts[0].Status)

	rearmed := store.drafts[1]
	assert.Equal(t, models.DraftStatusScheduled, rearmed.Status)
	require.NotNil(t, rearmed.DueAt)
	assert.Equal(t, now.Add(7*24*time.Hour), *rearmed.DueAt)
	require.NotNil(t, rearmed.RemainingSends)
	assert.Equal(t, 2, *rearmed.RemainingSends)
	assert.Equal(t, "Check-in", rearmed.Subject)
}

func TestReleaseDueLastRecurringSendDoesNotRearm(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repeat, remaining := 7, 1
	draft := scheduledDraft("d1", now.Add(-time.Minute))
	draft.RepeatDays = &repeat
	draft.RemainingSends = &remaining

	store := &fakeDraftStore{drafts: []*models.EmailDraft{draft}}
	s := New(store, noopLogger{})
	s.now = func() time.Time { return now }

	require.NoError(t, s.ReleaseDue(context.Background()))

	require.Len(t, store.drafts, 1)
	assert.Equal(t, models.DraftStatusPending, store.drafts[0].Status)
}
