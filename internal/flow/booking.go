package flow

import (
	"context"
	"errors"
	"time"

	"github.com/medicore/booking-platform/internal/directory"
	"github.com/medicore/booking-platform/pkg/logging"
)

// PaymentPagePath is where a successful booking hands off to.
const PaymentPagePath = "/payment"

// ErrNoDoctorSelected blocks submission until a doctor is chosen. No
// request is sent while it holds.
var ErrNoDoctorSelected = errors.New("flow: no doctor selected")

// ErrUnknownSelection indicates a department or doctor outside the
// directory.
var ErrUnknownSelection = errors.New("flow: unknown department or doctor")

// DoctorChoice is the view model for one selectable doctor.
type DoctorChoice struct {
	Name      string
	Specialty string
	Fee       string
	Selected  bool
}

// BookingForm holds the patient-entered fields of the booking form. The
// doctor, department and fee come from the controller's selection state,
// never from the form.
type BookingForm struct {
	PatientName    string
	Email          string
	Phone          string
	Address        string
	MedicalHistory string
	Date           string // YYYY-MM-DD
	Time           string // HH:MM
	Symptoms       string
}

// BookingController drives the booking form page. Department selection
// narrows the doctor choices; exactly one doctor may be selected at a time,
// and its name/fee bind into the submission.
type BookingController struct {
	directory *directory.Directory
	backend   Backend
	handoff   HandoffStore
	sessionID string
	logger    *logging.Logger
	board     *noticeBoard
	now       func() time.Time

	department string
	doctor     *directory.Doctor
	submitting bool
}

// NewBookingController creates a booking controller for one session.
func NewBookingController(dir *directory.Directory, backend Backend, handoff HandoffStore, sessionID string, logger *logging.Logger) *BookingController {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingController{
		directory: dir,
		backend:   backend,
		handoff:   handoff,
		sessionID: sessionID,
		logger:    logger,
		board:     newNoticeBoard(nil),
		now:       time.Now,
	}
}

// WithClock overrides the time source (for tests).
func (c *BookingController) WithClock(now func() time.Time) *BookingController {
	c.now = now
	c.board.now = now
	return c
}

// Departments lists the selectable departments in directory order.
func (c *BookingController) Departments() []string {
	return c.directory.Departments()
}

// SelectDepartment narrows the doctor choices to one department and clears
// any prior doctor selection.
func (c *BookingController) SelectDepartment(department string) ([]DoctorChoice, error) {
	doctors := c.directory.Doctors(department)
	if len(doctors) == 0 {
		return nil, ErrUnknownSelection
	}
	c.department = department
	c.doctor = nil
	return c.choices(doctors), nil
}

// SelectDoctor marks one doctor selected, replacing any previous selection,
// and binds the doctor's name and fee into the pending submission.
func (c *BookingController) SelectDoctor(name string) ([]DoctorChoice, error) {
	doc, ok := c.directory.Find(c.department, name)
	if !ok {
		return nil, ErrUnknownSelection
	}
	c.doctor = &doc
	return c.choices(c.directory.Doctors(c.department)), nil
}

// SelectedDoctor returns the bound doctor name and fee, if any.
func (c *BookingController) SelectedDoctor() (name string, fee int64, ok bool) {
	if c.doctor == nil {
		return "", 0, false
	}
	return c.doctor.Name, c.doctor.Fee, true
}

// MinDate is the earliest selectable appointment date: today.
func (c *BookingController) MinDate() string {
	return c.now().Format("2006-01-02")
}

// Submitting reports whether a submission is in flight; the submit control
// is disabled while it is.
func (c *BookingController) Submitting() bool {
	return c.submitting
}

// Submit validates, assembles and sends the draft appointment. With no
// doctor selected it shows a validation error and sends nothing. On
// success it stores the handoff record and returns the payment page path.
func (c *BookingController) Submit(ctx context.Context, form BookingForm) (string, error) {
	if c.doctor == nil {
		c.board.push(NoticeError, "Please select a doctor before booking")
		return "", ErrNoDoctorSelected
	}

	c.submitting = true
	defer func() { c.submitting = false }()

	draft := Draft{
		PatientName:     form.PatientName,
		Email:           form.Email,
		Phone:           form.Phone,
		Address:         form.Address,
		MedicalHistory:  form.MedicalHistory,
		DoctorName:      c.doctor.Name,
		Department:      c.department,
		AppointmentDate: form.Date,
		AppointmentTime: form.Time,
		ConsultationFee: c.doctor.Fee,
		Symptoms:        form.Symptoms,
	}

	appointmentID, err := c.backend.BookAppointment(ctx, draft)
	if err != nil {
		c.logger.Error("booking submit failed", "error", err)
		c.board.push(NoticeError, err.Error())
		return "", err
	}

	handoff := &Handoff{AppointmentID: appointmentID, Draft: draft}
	if err := c.handoff.Put(ctx, c.sessionID, handoff); err != nil {
		c.logger.Error("handoff store failed", "error", err, "appointment_id", appointmentID)
		c.board.push(NoticeError, "Booking saved but could not continue to payment")
		return "", err
	}

	return PaymentPagePath, nil
}

// Notices returns the currently visible notices.
func (c *BookingController) Notices() []Notice {
	return c.board.active()
}

// DismissNotices hides all visible notices.
func (c *BookingController) DismissNotices() {
	c.board.clear()
}

func (c *BookingController) choices(doctors []directory.Doctor) []DoctorChoice {
	out := make([]DoctorChoice, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, DoctorChoice{
			Name:      d.Name,
			Specialty: d.Specialty,
			Fee:       FormatAmount(d.Fee),
			Selected:  c.doctor != nil && c.doctor.Name == d.Name,
		})
	}
	return out
}
