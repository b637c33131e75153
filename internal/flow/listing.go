package flow

import (
	"context"
	"errors"
	"time"

	"github.com/medicore/booking-platform/pkg/logging"
)

// ListingState is the appointment list page's render state.
type ListingState int

const (
	ListingLoading ListingState = iota
	ListingReady
	ListingEmpty
	ListingFailed
)

// ErrNotConfirmed indicates a cancellation was attempted without the
// patient's interactive confirmation.
var ErrNotConfirmed = errors.New("flow: cancellation not confirmed")

// AppointmentCard is the view model for one rendered appointment.
type AppointmentCard struct {
	ID          string
	StatusLabel string
	StatusColor string
	Patient     string
	DoctorName  string
	Department  string
	Date        string
	Time        string
	Fee         string
	Symptoms    string
	Notes       string
	CanCancel   bool
}

// ListingController drives the appointment list page: it loads the
// patient's appointments, renders one card per record in backend order, and
// handles cancellation. The backend list is authoritative; cancellation
// never mutates cards locally.
type ListingController struct {
	backend Backend
	logger  *logging.Logger
	board   *noticeBoard

	state ListingState
	cards []AppointmentCard
}

// NewListingController creates a list controller in the loading state.
func NewListingController(backend Backend, logger *logging.Logger) *ListingController {
	if logger == nil {
		logger = logging.Default()
	}
	return &ListingController{
		backend: backend,
		logger:  logger,
		board:   newNoticeBoard(nil),
		state:   ListingLoading,
	}
}

// WithClock overrides the time source (for tests).
func (c *ListingController) WithClock(now func() time.Time) *ListingController {
	c.board.now = now
	return c
}

// Load fetches the appointment list. Any failure moves the page to the
// error state; there is no automatic retry.
func (c *ListingController) Load(ctx context.Context) error {
	appts, err := c.backend.ListAppointments(ctx)
	if err != nil {
		c.logger.Error("appointment list load failed", "error", err)
		c.state = ListingFailed
		c.cards = nil
		return err
	}

	c.cards = make([]AppointmentCard, 0, len(appts))
	for _, appt := range appts {
		c.cards = append(c.cards, renderCard(appt))
	}
	if len(c.cards) == 0 {
		c.state = ListingEmpty
	} else {
		c.state = ListingReady
	}
	return nil
}

// Cancel requests cancellation of the given appointment. The confirmed
// flag carries the patient's interactive confirmation; without it no
// request is sent. On success the whole list is re-fetched.
func (c *ListingController) Cancel(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := c.backend.CancelAppointment(ctx, id); err != nil {
		c.logger.Error("cancellation failed", "error", err, "appointment_id", id)
		c.board.push(NoticeError, cancelFailureMessage(err))
		return err
	}
	c.board.push(NoticeSuccess, "Appointment cancelled successfully")
	return c.Load(ctx)
}

// State returns the current render state.
func (c *ListingController) State() ListingState {
	return c.state
}

// Cards returns the rendered appointment cards in backend order.
func (c *ListingController) Cards() []AppointmentCard {
	out := make([]AppointmentCard, len(c.cards))
	copy(out, c.cards)
	return out
}

// Notices returns the currently visible notices.
func (c *ListingController) Notices() []Notice {
	return c.board.active()
}

// DismissNotices hides all visible notices.
func (c *ListingController) DismissNotices() {
	c.board.clear()
}

func renderCard(appt Appointment) AppointmentCard {
	status := appt.Status
	return AppointmentCard{
		ID:          appt.ID,
		StatusLabel: status,
		StatusColor: StatusColor(status),
		Patient:     appt.Patient,
		DoctorName:  appt.DoctorName,
		Department:  appt.Department,
		Date:        FormatDate(appt.DateTime),
		Time:        FormatClock(appt.DateTime),
		Fee:         FormatAmount(appt.Fee),
		Symptoms:    appt.Symptoms,
		Notes:       appt.Notes,
		CanCancel:   status == "PENDING" || status == "CONFIRMED",
	}
}

func cancelFailureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Failed to cancel appointment"
	}
	return err.Error()
}
