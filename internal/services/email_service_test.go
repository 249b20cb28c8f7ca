package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/pkg/models"
)

// fakePatientStore serves a single patient by ID.
type fakePatientStore struct {
	patient *models.Patient
}

func (f *fakePatientStore) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	if f.patient != nil && f.patient.ID == id {
		return f.patient, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePatientStore) ListPatients(ctx context.Context, search string, limit int) ([]*models.Patient, error) {
	return nil, nil
}
func (f *fakePatientStore) CreatePatient(ctx context.Context, p *models.Patient) error { return nil }
func (f *fakePatientStore) UpdatePatient(ctx context.Context, p *models.Patient) error { return nil }
func (f *fakePatientStore) ListInsurances(ctx context.Context, patientID string) ([]*models.PatientInsurance, error) {
	return nil, nil
}
func (f *fakePatientStore) ListAppointments(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	return nil, nil
}
func (f *fakePatientStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	return nil
}

func testPatient() *models.Patient {
	email := "jean.martin@example.com"
	return &models.Patient{ID: "p1", FirstName: "Jean", LastName: "Martin", Email: &email}
}

func TestGeneratePatientEmailParsesJSON(t *testing.T) {
	client := &fakeCompletionClient{reply: &ChatMessage{
		Role:    "assistant",
		Content: `{"subject": "Your consultation", "body": "Dear Jean,\n\nSee you soon."}`,
	}}
	svc := NewEmailService(&fakePatientStore{patient: testPatient()}, client)

	result, err := svc.GeneratePatientEmail(context.Background(), "p1", "confirm the consultation", "")
	require.NoError(t, err)
	assert.Equal(t, "Your consultation", result.Subject)
	assert.Equal(t, "Dear Jean,\n\nSee you soon.", result.Body)

	// the prompt carries the patient identity
	require.Len(t, client.lastRequest.Messages, 2)
	assert.Contains(t, client.lastRequest.Messages[1].Content, "Jean Martin")
	assert.Contains(t, client.lastRequest.Messages[1].Content, "jean.martin@example.com")
}

func TestGeneratePatientEmailUnparseableOutputFallsBack(t *testing.T) {
	client := &fakeCompletionClient{reply: &ChatMessage{
		Role:    "assistant",
		Content: "  Dear Jean, plain prose instead of JSON.  ",
	}}
	svc := NewEmailService(&fakePatientStore{patient: testPatient()}, client)

	result, err := svc.GeneratePatientEmail(context.Background(), "p1", "follow up", "warm")
	require.NoError(t, err)
	assert.Equal(t, "Clinic update", result.Subject)
	assert.Equal(t, "Dear Jean, plain prose instead of JSON.", result.Body)
}

func TestGeneratePatientEmailEmptyUpstreamFallsBack(t *testing.T) {
	client := &fakeCompletionClient{err: ErrEmptyCompletion}
	svc := NewEmailService(&fakePatientStore{patient: testPatient()}, client)

	result, err := svc.GeneratePatientEmail(context.Background(), "p1", "follow up", "")
	require.NoError(t, err)
	assert.Equal(t, "Clinic update", result.Subject)
	assert.Equal(t, "Dear patient,\n\nThank you for your message.", result.Body)
}

func TestGeneratePatientEmailValidation(t *testing.T) {
	svc := NewEmailService(&fakePatientStore{patient: testPatient()}, &fakeCompletionClient{})

	_, err := svc.GeneratePatientEmail(context.Background(), "", "something", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = svc.GeneratePatientEmail(context.Background(), "p1", "   ", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGeneratePatientEmailUnknownPatient(t *testing.T) {
	svc := NewEmailService(&fakePatientStore{}, &fakeCompletionClient{})

	_, err := svc.GeneratePatientEmail(context.Background(), "missing", "something", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
