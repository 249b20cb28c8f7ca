// Package models defines the domain models for the clinic CRM service.
package models

import (
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Patient represents a clinic patient record.
type Patient struct {
	ID                 string     `json:"id" db:"id"`
	FirstName          string     `json:"first_name" db:"first_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	Email              *string    `json:"email,omitempty" db:"email"`
	Phone              *string    `json:"phone,omitempty" db:"phone"`
	Gender             *string    `json:"gender,omitempty" db:"gender"`
	DOB                *time.Time `json:"dob,omitempty" db:"dob"`
	MaritalStatus      *string    `json:"marital_status,omitempty" db:"marital_status"`
	Nationality        *string    `json:"nationality,omitempty" db:"nationality"`
	StreetAddress      *string    `json:"street_address,omitempty" db:"street_address"`
	PostalCode         *string    `json:"postal_code,omitempty" db:"postal_code"`
	Town               *string    `json:"town,omitempty" db:"town"`
	Profession         *string    `json:"profession,omitempty" db:"profession"`
	CurrentEmployer    *string    `json:"current_employer,omitempty" db:"current_employer"`
	Source             *string    `json:"source,omitempty" db:"source"`
	Notes              *string    `json:"notes,omitempty" db:"notes"`
	LanguagePreference *string    `json:"language_preference,omitempty" db:"language_preference"`
	ClinicPreference   *string    `json:"clinic_preference,omitempty" db:"clinic_preference"`
	LifecycleStage     *string    `json:"lifecycle_stage,omitempty" db:"lifecycle_stage"`
	ContactOwnerName   *string    `json:"contact_owner_name,omitempty" db:"contact_owner_name"`
	ContactOwnerEmail  *string    `json:"contact_owner_email,omitempty" db:"contact_owner_email"`
	CreatedBy          *string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins the patient's first and last names, skipping blanks.
func (p *Patient) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// PatientInsurance represents one insurance record attached to a patient.
type PatientInsurance struct {
	ID            string    `json:"id" db:"id"`
	PatientID     string    `json:"patient_id" db:"patient_id"`
	ProviderName  string    `json:"provider_name" db:"provider_name"`
	CardNumber    *string   `json:"card_number,omitempty" db:"card_number"`
	InsuranceType *string   `json:"insurance_type,omitempty" db:"insurance_type"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// AppointmentPatient is the patient subset embedded in calendar rows.
type AppointmentPatient struct {
	ID        string  `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Appointment represents a calendar appointment.
type Appointment struct {
	ID        string              `json:"id" db:"id"`
	PatientID string              `json:"patient_id" db:"patient_id"`
	StartTime time.Time           `json:"start_time" db:"start_time"`
	EndTime   *time.Time          `json:"end_time,omitempty" db:"end_time"`
	Status    AppointmentStatus   `json:"status" db:"status"`
	Reason    *string             `json:"reason,omitempty" db:"reason"`
	Location  *string             `json:"location,omitempty" db:"location"`
	Patient   *AppointmentPatient `json:"patient,omitempty"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
}

// ServiceCategory groups services in the catalog.
type ServiceCategory struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	SortOrder   int     `json:"sort_order" db:"sort_order"`
}

// Service represents a billable clinic service.
type Service struct {
	ID          string    `json:"id" db:"id"`
	CategoryID  string    `json:"category_id" db:"category_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	BasePrice   *float64  `json:"base_price,omitempty" db:"base_price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// User is a staff member from the auth directory, flattened for listings.
type User struct {
	ID        string  `json:"id" db:"id"`
	FirstName *string `json:"-" db:"first_name"`
	LastName  *string `json:"-" db:"last_name"`
	FullName  *string `json:"full_name"`
	Email     *string `json:"email" db:"email"`
}

// DraftStatus represents the lifecycle state of an email draft.
type DraftStatus string

const (
	DraftStatusPending   DraftStatus = "pending"
	DraftStatusScheduled DraftStatus = "scheduled"
	DraftStatusSent      DraftStatus = "sent"
)

// EmailDraft is a rendered patient email produced by a firing workflow.
type EmailDraft struct {
	ID             string      `json:"id" db:"id"`
	WorkflowID     *string     `json:"workflow_id,omitempty" db:"workflow_id"`
	PatientID      string      `json:"patient_id" db:"patient_id"`
	DealID         *string     `json:"deal_id,omitempty" db:"deal_id"`
	Subject        string      `json:"subject" db:"subject"`
	Body           string      `json:"body" db:"body"`
	Status         DraftStatus `json:"status" db:"status"`
	DueAt          *time.Time  `json:"due_at,omitempty" db:"due_at"`
	RemainingSends *int        `json:"remaining_sends,omitempty" db:"remaining_sends"`
	RepeatDays     *int        `json:"repeat_days,omitempty" db:"repeat_days"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
