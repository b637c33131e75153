package payments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medicore/booking-platform/internal/appointments"
	"github.com/medicore/booking-platform/internal/observability/metrics"
	"github.com/medicore/booking-platform/pkg/logging"
)

// ReceiptNotifier sends a payment receipt after a confirmed payment.
// Implementations are best-effort; failures never fail the payment.
type ReceiptNotifier interface {
	SendReceipt(ctx context.Context, appt *appointments.Appointment, p *Payment) error
}

// Service drives the backend half of the payment handshake: intent creation
// against Stripe and confirmation of the paid booking.
type Service struct {
	stripe       *StripeClient
	repo         *Repository
	appointments *appointments.Service
	notifier     ReceiptNotifier
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
	now          func() time.Time
}

// NewService creates a payment service.
func NewService(stripe *StripeClient, repo *Repository, appts *appointments.Service, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		stripe:       stripe,
		repo:         repo,
		appointments: appts,
		logger:       logger,
		now:          time.Now,
	}
}

// WithNotifier attaches a receipt notifier.
func (s *Service) WithNotifier(n ReceiptNotifier) *Service {
	s.notifier = n
	return s
}

// WithMetrics attaches booking metrics.
func (s *Service) WithMetrics(m *metrics.BookingMetrics) *Service {
	s.metrics = m
	return s
}

// WithClock overrides the time source (for tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateIntent creates a Stripe PaymentIntent for an appointment's
// consultation fee and persists a PENDING payment row. The returned client
// secret drives the hosted card widget.
func (s *Service) CreateIntent(ctx context.Context, appointmentID uuid.UUID, method Method) (string, error) {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		s.metrics.ObservePayment("create_intent", "error")
		return "", err
	}

	start := s.now()
	intent, err := s.stripe.CreateIntent(ctx, appt.ConsultationFee*100, "usd", map[string]string{
		"appointment_id": appt.ID.String(),
	})
	s.metrics.ObserveProviderLatency("create_intent", s.now().Sub(start).Seconds())
	if err != nil {
		s.metrics.ObservePayment("create_intent", "error")
		return "", err
	}

	payment := &Payment{
		ID:               uuid.New(),
		AppointmentID:    appt.ID,
		AmountCents:      appt.ConsultationFee * 100,
		Method:           method,
		Status:           StatusPending,
		ProviderIntentID: intent.ID,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		s.metrics.ObservePayment("create_intent", "error")
		return "", err
	}

	s.metrics.ObservePayment("create_intent", "ok")
	s.logger.Info("payment intent created",
		"appointment_id", appt.ID,
		"intent_id", intent.ID,
		"amount_cents", payment.AmountCents,
	)
	return intent.ClientSecret, nil
}

// Confirm finalizes a payment after the client-side provider confirmation.
// It re-checks the intent status with Stripe; only a succeeded intent marks
// the payment COMPLETED and the appointment CONFIRMED.
func (s *Service) Confirm(ctx context.Context, paymentIntentID string) error {
	start := s.now()
	intent, err := s.stripe.GetIntent(ctx, paymentIntentID)
	s.metrics.ObserveProviderLatency("get_intent", s.now().Sub(start).Seconds())
	if err != nil {
		s.metrics.ObservePayment("confirm", "error")
		return err
	}
	if intent.Status != IntentSucceeded {
		s.metrics.ObservePayment("confirm", "not_succeeded")
		if payment, lookupErr := s.repo.GetByIntentID(ctx, paymentIntentID); lookupErr == nil {
			if markErr := s.repo.MarkFailed(ctx, payment.ID); markErr != nil {
				s.logger.Error("mark payment failed", "error", markErr, "intent_id", paymentIntentID)
			}
		}
		s.logger.Info("payment not settled", "intent_id", paymentIntentID, "intent_status", intent.Status)
		return ErrIntentNotSucceeded
	}

	payment, err := s.repo.GetByIntentID(ctx, paymentIntentID)
	if err != nil {
		s.metrics.ObservePayment("confirm", "error")
		return err
	}
	if err := s.repo.MarkCompleted(ctx, payment.ID, s.now()); err != nil {
		s.metrics.ObservePayment("confirm", "error")
		return err
	}
	if err := s.appointments.Confirm(ctx, payment.AppointmentID); err != nil {
		s.metrics.ObservePayment("confirm", "error")
		return err
	}

	s.metrics.ObservePayment("confirm", "ok")
	s.logger.Info("payment confirmed",
		"appointment_id", payment.AppointmentID,
		"intent_id", paymentIntentID,
	)

	if s.notifier != nil {
		if appt, err := s.appointments.Get(ctx, payment.AppointmentID); err == nil {
			if err := s.notifier.SendReceipt(ctx, appt, payment); err != nil {
				s.logger.Error("receipt send failed", "error", err, "appointment_id", payment.AppointmentID)
			}
		}
	}
	return nil
}

// Refund reverses a completed payment via Stripe and marks it REFUNDED.
func (s *Service) Refund(ctx context.Context, appointmentID uuid.UUID) error {
	payment, err := s.repo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if payment.Status != StatusCompleted {
		return ErrNotRefundable
	}
	if err := s.stripe.Refund(ctx, payment.ProviderIntentID); err != nil {
		return err
	}
	if err := s.repo.MarkRefunded(ctx, payment.ID); err != nil {
		return err
	}
	s.logger.Info("payment refunded", "appointment_id", appointmentID, "intent_id", payment.ProviderIntentID)
	return nil
}
