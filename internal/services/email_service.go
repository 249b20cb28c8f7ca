package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sharyyoru/medical-crm/internal/repository"
)

const emailSystemPrompt = "You are an email assistant for Maison Tóā Clinic. " +
	"You write concise, empathetic, medically appropriate emails to a single patient. " +
	"Always output strict JSON with keys 'subject' and 'body' (plain text, no HTML)."

const (
	defaultTone         = "professional and reassuring"
	fallbackSubject     = "Clinic update"
	fallbackBody        = "Dear patient,\n\nThank you for your message."
	emailTemperature    = 0.7
	fallbackGreetingArg = "patient"
)

// EmailDraftResult is the generated subject/body pair.
type EmailDraftResult struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailService drafts one-off patient emails through the completion API.
type EmailService struct {
	patients repository.PatientStore
	client   CompletionClient
}

// NewEmailService creates a new EmailService.
func NewEmailService(patients repository.PatientStore, client CompletionClient) *EmailService {
	return &EmailService{patients: patients, client: client}
}

// GeneratePatientEmail looks up the patient, builds a strict-JSON prompt and
// coerces the completion output into a subject/body pair. Unparseable
// upstream output falls back to a fixed subject and the raw trimmed text
// rather than surfacing an error.
func (s *EmailService) GeneratePatientEmail(ctx context.Context, patientID, description, tone string) (*EmailDraftResult, error) {
	patientID = strings.TrimSpace(patientID)
	description = strings.TrimSpace(description)
	tone = strings.TrimSpace(tone)
	if tone == "" {
		tone = defaultTone
	}
	if patientID == "" || description == "" {
		return nil, NewValidationError("patientId and description are required")
	}

	patient, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var summary []string
	if name := patient.FullName(); name != "" {
		summary = append(summary, "Name: "+name)
	}
	if patient.Email != nil && *patient.Email != "" {
		summary = append(summary, "Email: "+*patient.Email)
	}
	if patient.Phone != nil && *patient.Phone != "" {
		summary = append(summary, "Phone: "+*patient.Phone)
	}
	patientSummary := "Basic identity and contact details are not available."
	if len(summary) > 0 {
		patientSummary = strings.Join(summary, "\n")
	}

	greeting := patient.FirstName
	if greeting == "" {
		greeting = fallbackGreetingArg
	}

	userPrompt := fmt.Sprintf(`
We are composing a one-off email to this specific patient.

Patient details:
%s

Goal / context for the email:
%s

Tone: %s.

Requirements:
- Output STRICT JSON only, no markdown, with shape: {"subject": string, "body": string}.
- 'body' must be plain text suitable for pasting into an email textarea; use paragraphs separated by blank lines.
- Start with a natural greeting to the patient (for example, "Dear %s,").
- Do NOT include an email signature or clinic contact information; that will be appended separately.
`, patientSummary, description, tone, greeting)

	reply, err := s.client.Complete(ctx, CompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: emailSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: emailTemperature,
	})

	// An empty upstream reply is not an error here; the fixed fallback
	// text is used instead.
	raw := ""
	if reply != nil {
		raw = reply.Content
	}
	if err != nil && !errors.Is(err, ErrEmptyCompletion) {
		return nil, err
	}

	result := &EmailDraftResult{Subject: fallbackSubject, Body: fallbackBody}

	var parsed EmailDraftResult
	if jsonErr := json.Unmarshal([]byte(raw), &parsed); jsonErr == nil {
		if s := strings.TrimSpace(parsed.Subject); s != "" {
			result.Subject = s
		}
		if b := strings.TrimSpace(parsed.Body); b != "" {
			result.Body = b
		}
	} else if trimmed := strings.TrimSpace(raw); trimmed != "" {
		result.Body = trimmed
	}

	return result, nil
}
