package flow

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/medicore/booking-platform/pkg/logging"
)

// PaymentState tracks the card payment handshake.
type PaymentState int

const (
	PaymentIdle PaymentState = iota
	IntentRequested
	ProviderConfirming
	BackendConfirming
	PaymentSucceeded
	PaymentFailed
)

// BookingPagePath is where the payment page redirects when no pending
// booking exists.
const BookingPagePath = "/book-appointment"

// MissingHandoffRedirectDelay is how long the error notice shows before the
// redirect to the booking page.
const MissingHandoffRedirectDelay = 2 * time.Second

var (
	// ErrPaymentInFlight rejects a duplicate pay trigger while an attempt
	// is running.
	ErrPaymentInFlight = errors.New("flow: payment already in progress")

	// ErrIntentIncomplete indicates the provider left the intent in an
	// intermediate state (e.g. additional authentication required). The
	// attempt is surfaced as retryable; no confirmation is sent.
	ErrIntentIncomplete = errors.New("flow: payment requires additional action")

	// ErrNotStarted indicates Pay was called before a successful Start.
	ErrNotStarted = errors.New("flow: payment page not initialized")
)

// PaymentSummary is the read-only order summary shown above the card form.
// Total equals the fee; there is no tax or discount logic.
type PaymentSummary struct {
	PatientName string
	DoctorName  string
	Department  string
	When        string
	Fee         string
	Total       string
}

// Redirect is a navigation instruction produced by the controller.
type Redirect struct {
	Path  string
	After time.Duration
}

// PaymentController drives the payment page: it requires a pending booking
// from the handoff store, renders its summary, and runs the three-step
// handshake (create intent, confirm with provider, confirm with backend).
type PaymentController struct {
	backend   Backend
	provider  CardProvider
	handoff   HandoffStore
	sessionID string
	logger    *logging.Logger
	board     *noticeBoard

	state          PaymentState
	pending        *Handoff
	publishableKey string
	method         string
}

// NewPaymentController creates a payment controller for one session.
func NewPaymentController(backend Backend, provider CardProvider, handoff HandoffStore, sessionID string, logger *logging.Logger) *PaymentController {
	if logger == nil {
		logger = logging.Default()
	}
	return &PaymentController{
		backend:   backend,
		provider:  provider,
		handoff:   handoff,
		sessionID: sessionID,
		logger:    logger,
		board:     newNoticeBoard(nil),
		state:     PaymentIdle,
		method:    "CREDIT_CARD",
	}
}

// WithClock overrides the time source (for tests).
func (c *PaymentController) WithClock(now func() time.Time) *PaymentController {
	c.board.now = now
	return c
}

// Start loads the pending booking and the provider's publishable key. With
// no pending booking it returns a delayed redirect to the booking page and
// renders no summary.
func (c *PaymentController) Start(ctx context.Context) (*Redirect, error) {
	pending, err := c.handoff.Get(ctx, c.sessionID)
	if err != nil {
		if errors.Is(err, ErrNoHandoff) {
			c.board.push(NoticeError, "No appointment found. Please book an appointment first.")
			return &Redirect{Path: BookingPagePath, After: MissingHandoffRedirectDelay}, err
		}
		c.board.push(NoticeError, "Failed to load your booking")
		return nil, err
	}

	key, err := c.backend.StripeKey(ctx)
	if err != nil {
		c.logger.Error("stripe key fetch failed", "error", err)
		c.board.push(NoticeError, "Payment system unavailable. Please try again.")
		return nil, err
	}

	c.pending = pending
	c.publishableKey = key
	return nil, nil
}

// Summary renders the read-only order summary, or nil before a successful
// Start.
func (c *PaymentController) Summary() *PaymentSummary {
	if c.pending == nil {
		return nil
	}
	d := c.pending.Draft
	fee := FormatAmount(d.ConsultationFee)
	when := d.AppointmentDate + " at " + d.AppointmentTime
	if t, err := time.Parse("2006-01-02 15:04", d.AppointmentDate+" "+d.AppointmentTime); err == nil {
		when = FormatDateTime(t)
	}
	return &PaymentSummary{
		PatientName: d.PatientName,
		DoctorName:  d.DoctorName,
		Department:  d.Department,
		When:        when,
		Fee:         fee,
		Total:       fee,
	}
}

// PublishableKey returns the provider key the card widget mounts with.
func (c *PaymentController) PublishableKey() string {
	return c.publishableKey
}

// SelectMethod switches the chosen payment method. Non-card methods are
// informational placeholders; no transaction runs for them.
func (c *PaymentController) SelectMethod(method string) {
	c.method = method
	if !c.CardMethod() {
		c.board.push(NoticeInfo, "This payment method is not yet available. Please pay by card.")
	}
}

// CardMethod reports whether the selected method runs through the card
// widget.
func (c *PaymentController) CardMethod() bool {
	return c.method == "CREDIT_CARD" || c.method == "DEBIT_CARD"
}

// State returns the handshake state.
func (c *PaymentController) State() PaymentState {
	return c.state
}

// PayDisabled reports whether the pay control is disabled. It is the only
// guard against duplicate attempts.
func (c *PaymentController) PayDisabled() bool {
	switch c.state {
	case IntentRequested, ProviderConfirming, BackendConfirming, PaymentSucceeded:
		return true
	default:
		return false
	}
}

// Pay runs the three-step handshake. On success it clears the handoff
// record and returns the confirmation redirect. On any failure it moves to
// the Failed state with a visible notice and re-enables the pay control,
// so the patient may retry.
func (c *PaymentController) Pay(ctx context.Context) (*Redirect, error) {
	if c.pending == nil {
		return nil, ErrNotStarted
	}
	if c.PayDisabled() {
		return nil, ErrPaymentInFlight
	}

	c.state = IntentRequested
	clientSecret, err := c.backend.CreateIntent(ctx, c.pending.AppointmentID, c.method)
	if err != nil {
		return nil, c.fail("intent creation failed", err)
	}

	c.state = ProviderConfirming
	intent, err := c.provider.ConfirmCardPayment(ctx, clientSecret, BillingDetails{
		Name:  c.pending.Draft.PatientName,
		Email: c.pending.Draft.Email,
	})
	if err != nil {
		return nil, c.fail("card confirmation failed", err)
	}
	if intent.Status != ProviderSucceeded {
		c.state = PaymentFailed
		c.logger.Error("intent left incomplete", "intent_id", intent.ID, "status", intent.Status)
		c.board.push(NoticeError, "Your payment needs additional verification. Please try again.")
		return nil, ErrIntentIncomplete
	}

	c.state = BackendConfirming
	if err := c.backend.ConfirmPayment(ctx, intent.ID); err != nil {
		return nil, c.fail("payment confirmation failed", err)
	}

	c.state = PaymentSucceeded
	if err := c.handoff.Clear(ctx, c.sessionID); err != nil {
		// The payment is already final; a stale handoff only risks a
		// duplicate payment page visit.
		c.logger.Error("handoff clear failed", "error", err, "appointment_id", c.pending.AppointmentID)
	}
	return &Redirect{Path: c.successPath()}, nil
}

// Notices returns the currently visible notices.
func (c *PaymentController) Notices() []Notice {
	return c.board.active()
}

// DismissNotices hides all visible notices.
func (c *PaymentController) DismissNotices() {
	c.board.clear()
}

func (c *PaymentController) fail(msg string, err error) error {
	c.state = PaymentFailed
	c.logger.Error(msg, "error", err, "appointment_id", c.pending.AppointmentID)
	c.board.push(NoticeError, err.Error())
	return err
}

func (c *PaymentController) successPath() string {
	d := c.pending.Draft
	q := url.Values{
		"id":       {c.pending.AppointmentID},
		"patient":  {d.PatientName},
		"doctor":   {d.DoctorName},
		"dept":     {d.Department},
		"datetime": {d.AppointmentDate + " " + d.AppointmentTime},
		"amount":   {strconv.FormatInt(d.ConsultationFee, 10)},
	}
	return "/success?" + q.Encode()
}
