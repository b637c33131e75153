package payments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Method is how the patient chose to pay. Only card methods are processed;
// anything else is an informational placeholder on the client.
type Method string

const (
	MethodCreditCard Method = "CREDIT_CARD"
	MethodDebitCard  Method = "DEBIT_CARD"
)

// Card reports whether the method runs through the hosted card widget.
func (m Method) Card() bool {
	return m == MethodCreditCard || m == MethodDebitCard
}

// Status is the lifecycle state of a payment record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Payment is one payment attempt against an appointment.
type Payment struct {
	ID               uuid.UUID
	AppointmentID    uuid.UUID
	AmountCents      int64
	Method           Method
	Status           Status
	ProviderIntentID string
	PaidAt           *time.Time
	CreatedAt        time.Time
}

var (
	// ErrPaymentNotFound indicates no payment row matches the lookup.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrIntentNotSucceeded indicates the provider-side payment intent has
	// not reached the succeeded status, so the booking must not be confirmed.
	ErrIntentNotSucceeded = errors.New("payment intent has not succeeded")

	// ErrNotRefundable indicates the payment is not in a refundable state.
	ErrNotRefundable = errors.New("payment is not refundable")
)
