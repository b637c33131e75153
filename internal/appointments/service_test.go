package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/booking-platform/internal/directory"
	"github.com/medicore/booking-platform/internal/observability/metrics"
	"github.com/medicore/booking-platform/pkg/logging"
)

var testClock = func() time.Time {
	return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	repo, mock := newMockRepo(t)
	svc := NewService(repo, directory.Default(), logging.New("error")).WithClock(testClock)
	return svc, mock
}

func validBooking() *BookingRequest {
	return &BookingRequest{
		PatientName:     "Jane Roe",
		Email:           "jane@example.com",
		Phone:           "555-0100",
		Address:         "12 Elm St",
		MedicalHistory:  "none",
		DoctorName:      "Dr. Sarah Johnson",
		Department:      "Cardiology",
		AppointmentDate: "2026-10-02",
		AppointmentTime: "14:30",
		ConsultationFee: 150,
		Symptoms:        "chest pain",
	}
}

func TestBook_HappyPath(t *testing.T) {
	svc, mock := newTestService(t)

	patientID := uuid.New()
	mock.ExpectQuery("SELECT id, name, email").
		WithArgs("jane@example.com").
		WillReturnRows(pgxmock.NewRows(patientColumns()).
			AddRow(patientID, "Jane Roe", "jane@example.com", "555-0100", "12 Elm St", "none", testClock()))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), patientID, "Dr. Sarah Johnson", "Cardiology",
			time.Date(2026, 10, 2, 14, 30, 0, 0, time.UTC), StatusPending, int64(150), "chest pain").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testClock()))

	appt, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, int64(150), appt.ConsultationFee)
	assert.Equal(t, "Dr. Sarah Johnson", appt.DoctorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBook_FeeBoundFromDirectory(t *testing.T) {
	svc, mock := newTestService(t)

	// Client-supplied fee is ignored in favor of the catalog fee.
	req := validBooking()
	req.ConsultationFee = 1

	mock.ExpectQuery("SELECT id, name, email").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO patients").
		WithArgs(pgxmock.AnyArg(), "Jane Roe", "jane@example.com", "555-0100", "12 Elm St", "none").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testClock()))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Dr. Sarah Johnson", "Cardiology",
			pgxmock.AnyArg(), StatusPending, int64(150), "chest pain").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testClock()))

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(150), appt.ConsultationFee)
}

func TestBook_ValidationFailures(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		mutate  func(*BookingRequest)
		wantErr error
	}{
		{"missing email", func(r *BookingRequest) { r.Email = "" }, nil},
		{"bad email", func(r *BookingRequest) { r.Email = "not-an-email" }, nil},
		{"unknown doctor", func(r *BookingRequest) { r.DoctorName = "Dr. Nobody" }, ErrUnknownDoctor},
		{"doctor in wrong department", func(r *BookingRequest) { r.Department = "Neurology" }, ErrUnknownDoctor},
		{"past date", func(r *BookingRequest) { r.AppointmentDate = "2020-01-01" }, ErrPastDateTime},
		{"garbled time", func(r *BookingRequest) { r.AppointmentTime = "half past noon" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBooking()
			tt.mutate(req)
			_, err := svc.Book(context.Background(), req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCancel_StatusGuard(t *testing.T) {
	tests := []struct {
		status     Status
		cancelable bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusCompleted, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			svc, mock := newTestService(t)

			id := uuid.New()
			now := testClock()
			mock.ExpectQuery("SELECT(.|\n)+FROM appointments").
				WithArgs(id).
				WillReturnRows(pgxmock.NewRows(appointmentColumns()).
					AddRow(id, "Dr. Sarah Johnson", "Cardiology", now.Add(time.Hour), string(tt.status),
						int64(150), nil, nil, now,
						uuid.New(), "Jane Roe", "jane@example.com", "555-0100", "", "", now))
			if tt.cancelable {
				mock.ExpectExec("UPDATE appointments SET status").
					WithArgs(id, StatusCancelled).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			}

			appt, err := svc.Cancel(context.Background(), id)
			if tt.cancelable {
				require.NoError(t, err)
				assert.Equal(t, StatusCancelled, appt.Status)
			} else {
				assert.ErrorIs(t, err, ErrNotCancellable)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestBookAndCancelCountMetrics(t *testing.T) {
	svc, mock := newTestService(t)
	reg := prometheus.NewRegistry()
	svc.WithMetrics(metrics.NewBookingMetrics(reg))

	patientID := uuid.New()
	mock.ExpectQuery("SELECT id, name, email").
		WithArgs("jane@example.com").
		WillReturnRows(pgxmock.NewRows(patientColumns()).
			AddRow(patientID, "Jane Roe", "jane@example.com", "555-0100", "12 Elm St", "none", testClock()))
	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testClock()))

	_, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)

	req := validBooking()
	req.DoctorName = "Dr. Nobody"
	_, err = svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownDoctor)

	id := uuid.New()
	now := testClock()
	mock.ExpectQuery("SELECT(.|\n)+FROM appointments").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(appointmentColumns()).
			AddRow(id, "Dr. Sarah Johnson", "Cardiology", now.Add(time.Hour), string(StatusCompleted),
				int64(150), nil, nil, now,
				uuid.New(), "Jane Roe", "jane@example.com", "555-0100", "", "", now))
	_, err = svc.Cancel(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotCancellable)

	assert.Equal(t, 1.0, counterValue(t, reg, "medicore_booking_bookings_total", map[string]string{"status": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "medicore_booking_bookings_total", map[string]string{"status": "invalid"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "medicore_booking_cancellations_total", map[string]string{"status": "rejected"}))
	require.NoError(t, mock.ExpectationsWereMet())
}
