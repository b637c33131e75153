package flow

import (
	"context"
	"time"
)

var testClock = func() time.Time {
	return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
}

type fakeBackend struct {
	appts     []Appointment
	listErr   error
	cancelErr error

	bookID  string
	bookErr error

	stripeKey    string
	stripeKeyErr error

	clientSecret string
	intentErr    error
	confirmErr   error

	listCalls    int
	bookCalls    int
	cancelCalls  int
	intentCalls  int
	confirmCalls int

	lastDraft        Draft
	lastCancelID     string
	lastIntentAppt   string
	lastIntentMethod string
	lastConfirmID    string
}

func (f *fakeBackend) ListAppointments(context.Context) ([]Appointment, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.appts, nil
}

func (f *fakeBackend) BookAppointment(_ context.Context, draft Draft) (string, error) {
	f.bookCalls++
	f.lastDraft = draft
	if f.bookErr != nil {
		return "", f.bookErr
	}
	return f.bookID, nil
}

func (f *fakeBackend) CancelAppointment(_ context.Context, id string) error {
	f.cancelCalls++
	f.lastCancelID = id
	return f.cancelErr
}

func (f *fakeBackend) StripeKey(context.Context) (string, error) {
	if f.stripeKeyErr != nil {
		return "", f.stripeKeyErr
	}
	if f.stripeKey == "" {
		return "pk_test_fake", nil
	}
	return f.stripeKey, nil
}

func (f *fakeBackend) CreateIntent(_ context.Context, appointmentID, paymentMethod string) (string, error) {
	f.intentCalls++
	f.lastIntentAppt = appointmentID
	f.lastIntentMethod = paymentMethod
	if f.intentErr != nil {
		return "", f.intentErr
	}
	return f.clientSecret, nil
}

func (f *fakeBackend) ConfirmPayment(_ context.Context, paymentIntentID string) error {
	f.confirmCalls++
	f.lastConfirmID = paymentIntentID
	return f.confirmErr
}

type fakeProvider struct {
	intent       *ProviderIntent
	err          error
	confirmCalls int
	lastSecret   string
	lastBilling  BillingDetails
}

func (f *fakeProvider) ConfirmCardPayment(_ context.Context, clientSecret string, billing BillingDetails) (*ProviderIntent, error) {
	f.confirmCalls++
	f.lastSecret = clientSecret
	f.lastBilling = billing
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

func testHandoff() *Handoff {
	return &Handoff{
		AppointmentID: "A1",
		Draft: Draft{
			PatientName:     "Jane Roe",
			Email:           "jane@example.com",
			Phone:           "555-0100",
			DoctorName:      "Dr. Sarah Johnson",
			Department:      "Cardiology",
			AppointmentDate: "2026-10-02",
			AppointmentTime: "14:30",
			ConsultationFee: 150,
		},
	}
}
