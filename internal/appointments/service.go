package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/medicore/booking-platform/internal/directory"
	"github.com/medicore/booking-platform/internal/observability/metrics"
	"github.com/medicore/booking-platform/pkg/logging"
)

// Service owns appointment business rules: booking validation, the status
// lifecycle, and the cancellation guard.
type Service struct {
	repo      *Repository
	directory *directory.Directory
	validate  *validator.Validate
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// NewService creates an appointment service.
func NewService(repo *Repository, dir *directory.Directory, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		directory: dir,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source (for tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMetrics attaches booking metrics.
func (s *Service) WithMetrics(m *metrics.BookingMetrics) *Service {
	s.metrics = m
	return s
}

// Book validates a draft submission and creates a PENDING appointment.
// The consultation fee is bound from the directory, not trusted from the
// client.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	if err := s.validate.Struct(req); err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, fmt.Errorf("appointments: invalid booking request: %w", err)
	}

	doctor, ok := s.directory.Find(req.Department, req.DoctorName)
	if !ok {
		s.metrics.ObserveBooking("invalid")
		return nil, ErrUnknownDoctor
	}

	when, err := req.DateTime()
	if err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, err
	}
	if !when.After(s.now()) {
		s.metrics.ObserveBooking("invalid")
		return nil, ErrPastDateTime
	}

	patient, err := s.repo.FindOrCreatePatient(ctx, req)
	if err != nil {
		s.metrics.ObserveBooking("error")
		return nil, err
	}

	appt := &Appointment{
		ID:                  uuid.New(),
		Patient:             *patient,
		DoctorName:          doctor.Name,
		Department:          req.Department,
		AppointmentDateTime: when,
		Status:              StatusPending,
		ConsultationFee:     doctor.Fee,
		Symptoms:            req.Symptoms,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		s.metrics.ObserveBooking("error")
		return nil, err
	}

	s.metrics.ObserveBooking("ok")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor", appt.DoctorName,
		"department", appt.Department,
		"fee", appt.ConsultationFee,
	)
	return appt, nil
}

// List returns every appointment, newest first.
func (s *Service) List(ctx context.Context) ([]*Appointment, error) {
	return s.repo.List(ctx)
}

// Get returns a single appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Cancel moves a PENDING or CONFIRMED appointment to CANCELLED. Terminal
// states are immutable.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.ObserveCancellation("error")
		return nil, err
	}
	if !appt.Status.Cancellable() {
		s.metrics.ObserveCancellation("rejected")
		return nil, ErrNotCancellable
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		s.metrics.ObserveCancellation("error")
		return nil, err
	}
	appt.Status = StatusCancelled
	s.metrics.ObserveCancellation("ok")
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return appt, nil
}

// Confirm marks an appointment CONFIRMED after a successful payment.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed); err != nil {
		return err
	}
	s.logger.Info("appointment confirmed", "appointment_id", id)
	return nil
}

// Complete marks an appointment COMPLETED and stores the doctor's notes.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes string) error {
	if err := s.repo.Complete(ctx, id, notes); err != nil {
		return err
	}
	s.logger.Info("appointment completed", "appointment_id", id)
	return nil
}
