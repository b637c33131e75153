package appointments

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment. Transitions are owned by
// the backend; clients only display the status and request cancellation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Cancellable reports whether an appointment in this status may still be
// cancelled. COMPLETED and CANCELLED are terminal.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Patient is the person an appointment belongs to. Patients are deduplicated
// by email on booking.
type Patient struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address,omitempty"`
	MedicalHistory string    `json:"medicalHistory,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Appointment is a scheduled consultation with a doctor.
type Appointment struct {
	ID                  uuid.UUID `json:"id"`
	Patient             Patient   `json:"patient"`
	DoctorName          string    `json:"doctorName"`
	Department          string    `json:"department"`
	AppointmentDateTime time.Time `json:"appointmentDateTime"`
	Status              Status    `json:"status"`
	ConsultationFee     int64     `json:"consultationFee"` // whole USD
	Symptoms            string    `json:"symptoms,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// BookingRequest is the draft appointment submission sent by the booking form.
// Date and time arrive as separate fields and are combined server-side.
type BookingRequest struct {
	PatientName     string `json:"patientName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Address         string `json:"address"`
	MedicalHistory  string `json:"medicalHistory"`
	DoctorName      string `json:"doctorName" validate:"required"`
	Department      string `json:"department" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required"` // YYYY-MM-DD
	AppointmentTime string `json:"appointmentTime" validate:"required"` // HH:MM
	ConsultationFee int64  `json:"consultationFee" validate:"gte=0"`
	Symptoms        string `json:"symptoms"`
}

// DateTime combines the date and time fields into a single timestamp.
func (r *BookingRequest) DateTime() (time.Time, error) {
	combined := r.AppointmentDate + " " + r.AppointmentTime
	t, err := time.Parse("2006-01-02 15:04", combined)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointments: invalid appointment date/time %q: %w", combined, err)
	}
	return t, nil
}
