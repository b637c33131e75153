package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/medicore/booking-platform/internal/appointments"
	"github.com/medicore/booking-platform/internal/payments"
	"github.com/medicore/booking-platform/pkg/logging"
)

// ReceiptService emails a payment receipt to the patient once their booking
// is confirmed. It satisfies payments.ReceiptNotifier.
type ReceiptService struct {
	email  EmailSender
	logger *logging.Logger
}

// NewReceiptService creates a receipt notifier backed by an email sender.
// A nil sender disables receipts without failing payments.
func NewReceiptService(email EmailSender, logger *logging.Logger) *ReceiptService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReceiptService{email: email, logger: logger}
}

// SendReceipt emails the patient a summary of the paid appointment.
func (s *ReceiptService) SendReceipt(ctx context.Context, appt *appointments.Appointment, p *payments.Payment) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping receipt")
		return nil
	}

	msg := EmailMessage{
		To:      appt.Patient.Email,
		ToName:  appt.Patient.Name,
		Subject: "Your appointment is confirmed",
		Body:    receiptBody(appt, p),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send receipt: %w", err)
	}
	s.logger.Info("receipt sent", "appointment_id", appt.ID, "to", appt.Patient.Email)
	return nil
}

func receiptBody(appt *appointments.Appointment, p *payments.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", appt.Patient.Name)
	b.WriteString("Your payment was received and your appointment is confirmed.\n\n")
	fmt.Fprintf(&b, "Doctor:      %s\n", appt.DoctorName)
	fmt.Fprintf(&b, "Department:  %s\n", appt.Department)
	fmt.Fprintf(&b, "Date:        %s\n", appt.AppointmentDateTime.Format("Monday, January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "Amount paid: %s\n", formatCents(p.AmountCents))
	fmt.Fprintf(&b, "Reference:   %s\n\n", p.ProviderIntentID)
	b.WriteString("Please arrive 15 minutes before your appointment.\n")
	return b.String()
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
