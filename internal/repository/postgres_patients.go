package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

const patientColumns = `id, first_name, last_name, email, phone, gender, dob,
	marital_status, nationality, street_address, postal_code, town,
	profession, current_employer, source, notes, language_preference,
	clinic_preference, lifecycle_stage, contact_owner_name,
	contact_owner_email, created_by, created_at, updated_at`

func scanPatient(row pgx.Row) (*models.Patient, error) {
	var p models.Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.Gender, &p.DOB, &p.MaritalStatus, &p.Nationality, &p.StreetAddress,
		&p.PostalCode, &p.Town, &p.Profession, &p.CurrentEmployer, &p.Source,
		&p.Notes, &p.LanguagePreference, &p.ClinicPreference, &p.LifecycleStage,
		&p.ContactOwnerName, &p.ContactOwnerEmail, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPatient retrieves a patient by id.
func (s *PostgresStore) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	p, err := scanPatient(s.db.QueryRow(ctx,
		"SELECT "+patientColumns+" FROM patients WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListPatients returns patients matching the search term against first name,
// last name or email, newest first. An empty search returns everyone up to
// the limit.
func (s *PostgresStore) ListPatients(ctx context.Context, search string, limit int) ([]*models.Patient, error) {
	if limit <= 0 {
		limit = 50
	}
	query := "SELECT " + patientColumns + " FROM patients"
	args := []any{}
	if search != "" {
		query += ` WHERE first_name ILIKE '%' || $1 || '%'
			OR last_name ILIKE '%' || $1 || '%'
			OR email ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += " ORDER BY created_at DESC LIMIT " + strconv.Itoa(limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*models.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// CreatePatient inserts a patient row. A missing ID is generated.
func (s *PostgresStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO patients (id, first_name, last_name, email, phone, gender, dob,
			marital_status, nationality, street_address, postal_code, town,
			profession, current_employer, source, notes, language_preference,
			clinic_preference, lifecycle_stage, contact_owner_name,
			contact_owner_email, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
		 RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.Gender, p.DOB,
		p.MaritalStatus, p.Nationality, p.StreetAddress, p.PostalCode, p.Town,
		p.Profession, p.CurrentEmployer, p.Source, p.Notes, p.LanguagePreference,
		p.ClinicPreference, p.LifecycleStage, p.ContactOwnerName,
		p.ContactOwnerEmail, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// UpdatePatient updates the editable fields of a patient row.
func (s *PostgresStore) UpdatePatient(ctx context.Context, p *models.Patient) error {
	err := s.db.QueryRow(ctx,
		`UPDATE patients SET first_name = $1, last_name = $2, email = $3,
			phone = $4, gender = $5, dob = $6, marital_status = $7,
			nationality = $8, street_address = $9, postal_code = $10,
			town = $11, profession = $12, current_employer = $13, source = $14,
			notes = $15, language_preference = $16, clinic_preference = $17,
			lifecycle_stage = $18, contact_owner_name = $19,
			contact_owner_email = $20, updated_at = now()
		 WHERE id = $21
		 RETURNING created_at, updated_at`,
		p.FirstName, p.LastName, p.Email, p.Phone, p.Gender, p.DOB,
		p.MaritalStatus, p.Nationality, p.StreetAddress, p.PostalCode, p.Town,
		p.Profession, p.CurrentEmployer, p.Source, p.Notes,
		p.LanguagePreference, p.ClinicPreference, p.LifecycleStage,
		p.ContactOwnerName, p.ContactOwnerEmail, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ListInsurances returns a patient's insurance rows, newest first.
func (s *PostgresStore) ListInsurances(ctx context.Context, patientID string) ([]*models.PatientInsurance, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, patient_id, provider_name, card_number, insurance_type, created_at
		 FROM patient_insurances WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insurances []*models.PatientInsurance
	for rows.Next() {
		var ins models.PatientInsurance
		if err := rows.Scan(&ins.ID, &ins.PatientID, &ins.ProviderName, &ins.CardNumber, &ins.InsuranceType, &ins.CreatedAt); err != nil {
			return nil, err
		}
		insurances = append(insurances, &ins)
	}
	return insurances, rows.Err()
}

// ListAppointments returns appointments starting within [from, to], ordered
// by start time, with patient name columns joined in.
func (s *PostgresStore) ListAppointments(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT a.id, a.patient_id, a.start_time, a.end_time, a.status,
			a.reason, a.location, a.created_at,
			p.id, p.first_name, p.last_name
		 FROM appointments a
		 LEFT JOIN patients p ON p.id = a.patient_id
		 WHERE a.start_time >= $1 AND a.start_time <= $2
		 ORDER BY a.start_time ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		var a models.Appointment
		var pid *string
		var first, last *string
		if err := rows.Scan(&a.ID, &a.PatientID, &a.StartTime, &a.EndTime,
			&a.Status, &a.Reason, &a.Location, &a.CreatedAt, &pid, &first, &last); err != nil {
			return nil, err
		}
		if pid != nil {
			a.Patient = &models.AppointmentPatient{ID: *pid, FirstName: first, LastName: last}
		}
		appointments = append(appointments, &a)
	}
	return appointments, rows.Err()
}

// CreateAppointment inserts an appointment row. A missing ID is generated
// and a missing status defaults to scheduled.
func (s *PostgresStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = models.AppointmentStatusScheduled
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO appointments (id, patient_id, start_time, end_time, status, reason, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		a.ID, a.PatientID, a.StartTime, a.EndTime, a.Status, a.Reason, a.Location,
	).Scan(&a.CreatedAt)
}

// ListUsers returns up to limit directory users, flattening first and last
// names into full_name the way the frontend expects.
func (s *PostgresStore) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.db.Query(ctx,
		"SELECT id, first_name, last_name, email FROM users ORDER BY created_at ASC LIMIT "+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email); err != nil {
			return nil, err
		}
		u.FullName = flattenName(u.FirstName, u.LastName, u.Email)
		users = append(users, &u)
	}
	return users, rows.Err()
}

// flattenName joins first and last name, falling back to the email address.
func flattenName(first, last, email *string) *string {
	var parts []string
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	if len(parts) > 0 {
		name := parts[0]
		if len(parts) == 2 {
			name += " " + parts[1]
		}
		return &name
	}
	if email != nil && *email != "" {
		return email
	}
	return nil
}

