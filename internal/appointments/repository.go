package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists patients and appointments in Postgres.
type Repository struct {
	db Querier
}

// NewRepository creates a repository backed by pgx.
func NewRepository(db Querier) *Repository {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: db}
}

// FindOrCreatePatient returns the patient with the given email, creating a
// new row from the booking details when none exists.
func (r *Repository) FindOrCreatePatient(ctx context.Context, req *BookingRequest) (*Patient, error) {
	var p Patient
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, address, medical_history, created_at
		FROM patients
		WHERE email = $1
	`, req.Email).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.MedicalHistory, &p.CreatedAt)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("appointments: patient lookup: %w", err)
	}

	p = Patient{
		ID:             uuid.New(),
		Name:           req.PatientName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}
	if err := r.db.QueryRow(ctx, `
		INSERT INTO patients (id, name, email, phone, address, medical_history)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, p.ID, p.Name, p.Email, p.Phone, p.Address, p.MedicalHistory).Scan(&p.CreatedAt); err != nil {
		return nil, fmt.Errorf("appointments: patient insert: %w", err)
	}
	return &p, nil
}

// Create inserts a new appointment row.
func (r *Repository) Create(ctx context.Context, appt *Appointment) error {
	if err := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_name, department, appointment_datetime, status, consultation_fee, symptoms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, appt.ID, appt.Patient.ID, appt.DoctorName, appt.Department, appt.AppointmentDateTime,
		appt.Status, appt.ConsultationFee, appt.Symptoms).Scan(&appt.CreatedAt); err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

const selectColumns = `
	a.id, a.doctor_name, a.department, a.appointment_datetime, a.status,
	a.consultation_fee, a.symptoms, a.notes, a.created_at,
	p.id, p.name, p.email, p.phone, p.address, p.medical_history, p.created_at`

// List returns all appointments, newest bookings first.
func (r *Repository) List(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+selectColumns+`
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		ORDER BY a.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	appts := make([]*Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list rows: %w", err)
	}
	return appts, nil
}

// GetByID fetches a single appointment with its patient.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT`+selectColumns+`
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.id = $1
	`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appt, nil
}

// UpdateStatus moves an appointment to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete marks an appointment COMPLETED and records the doctor's notes.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, notes string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments SET status = $2, notes = $3 WHERE id = $1
	`, id, StatusCompleted, notes)
	if err != nil {
		return fmt.Errorf("appointments: complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var (
		appt     Appointment
		symptoms *string
		notes    *string
		when     time.Time
	)
	if err := row.Scan(
		&appt.ID, &appt.DoctorName, &appt.Department, &when, &appt.Status,
		&appt.ConsultationFee, &symptoms, &notes, &appt.CreatedAt,
		&appt.Patient.ID, &appt.Patient.Name, &appt.Patient.Email, &appt.Patient.Phone,
		&appt.Patient.Address, &appt.Patient.MedicalHistory, &appt.Patient.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("appointments: scan: %w", err)
	}
	appt.AppointmentDateTime = when
	if symptoms != nil {
		appt.Symptoms = *symptoms
	}
	if notes != nil {
		appt.Notes = *notes
	}
	return &appt, nil
}
