package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/booking-platform/pkg/logging"
)

func sampleAppointments() []Appointment {
	when := time.Date(2026, 10, 2, 14, 30, 0, 0, time.UTC)
	return []Appointment{
		{ID: "A1", Status: "PENDING", Patient: "Jane Roe", DoctorName: "Dr. Sarah Johnson",
			Department: "Cardiology", DateTime: when, Fee: 150, Symptoms: "chest pain"},
		{ID: "A2", Status: "CONFIRMED", Patient: "John Doe", DoctorName: "Dr. Emily Davis",
			Department: "Neurology", DateTime: when, Fee: 175},
		{ID: "A3", Status: "COMPLETED", Patient: "Jane Roe", DoctorName: "Dr. Nancy King",
			Department: "General Medicine", DateTime: when, Fee: 80, Notes: "follow up in 6 months"},
		{ID: "A4", Status: "CANCELLED", Patient: "Jane Roe", DoctorName: "Dr. James Wilson",
			Department: "Orthopedics", DateTime: when, Fee: 160},
	}
}

func newListing(backend *fakeBackend) *ListingController {
	return NewListingController(backend, logging.New("error")).WithClock(testClock)
}

func TestListingLoad_RendersCardsInBackendOrder(t *testing.T) {
	backend := &fakeBackend{appts: sampleAppointments()}
	c := newListing(backend)

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, ListingReady, c.State())

	cards := c.Cards()
	require.Len(t, cards, 4)
	assert.Equal(t, "A1", cards[0].ID)
	assert.Equal(t, "A4", cards[3].ID)
	assert.Equal(t, "warning", cards[0].StatusColor)
	assert.Equal(t, "Friday, October 2, 2026", cards[0].Date)
	assert.Equal(t, "2:30 PM", cards[0].Time)
	assert.Equal(t, "$150", cards[0].Fee)
	assert.Equal(t, "chest pain", cards[0].Symptoms)
	assert.Equal(t, "follow up in 6 months", cards[2].Notes)
}

func TestListingLoad_EmptyListIsEmptyStateNotError(t *testing.T) {
	backend := &fakeBackend{}
	c := newListing(backend)

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, ListingEmpty, c.State())
	assert.Empty(t, c.Cards())
}

func TestListingLoad_FailureShowsErrorState(t *testing.T) {
	backend := &fakeBackend{listErr: errors.New("connection refused")}
	c := newListing(backend)

	require.Error(t, c.Load(context.Background()))
	assert.Equal(t, ListingFailed, c.State())
	assert.Empty(t, c.Cards())
}

func TestListingCancelControlOnlyForActiveStatuses(t *testing.T) {
	backend := &fakeBackend{appts: sampleAppointments()}
	c := newListing(backend)
	require.NoError(t, c.Load(context.Background()))

	cards := c.Cards()
	assert.True(t, cards[0].CanCancel, "PENDING is cancellable")
	assert.True(t, cards[1].CanCancel, "CONFIRMED is cancellable")
	assert.False(t, cards[2].CanCancel, "COMPLETED is terminal")
	assert.False(t, cards[3].CanCancel, "CANCELLED is terminal")
}

func TestListingUnknownStatusRendersNeutral(t *testing.T) {
	backend := &fakeBackend{appts: []Appointment{{ID: "A9", Status: "ARCHIVED", DateTime: testClock()}}}
	c := newListing(backend)
	require.NoError(t, c.Load(context.Background()))

	cards := c.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "neutral", cards[0].StatusColor)
	assert.False(t, cards[0].CanCancel)
}

func TestListingCancel_RequiresConfirmation(t *testing.T) {
	backend := &fakeBackend{appts: sampleAppointments()}
	c := newListing(backend)
	require.NoError(t, c.Load(context.Background()))

	err := c.Cancel(context.Background(), "A1", false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Zero(t, backend.cancelCalls)
}

func TestListingCancel_SuccessRefetchesList(t *testing.T) {
	backend := &fakeBackend{appts: sampleAppointments()}
	c := newListing(backend)
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, 1, backend.listCalls)

	require.NoError(t, c.Cancel(context.Background(), "A1", true))
	assert.Equal(t, "A1", backend.lastCancelID)
	// The list is authoritative only from the backend: a re-fetch, not a
	// local mutation.
	assert.Equal(t, 2, backend.listCalls)

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeSuccess, notices[0].Level)
}

func TestListingCancel_FailureLeavesCardsUnchanged(t *testing.T) {
	backend := &fakeBackend{appts: sampleAppointments(), cancelErr: errors.New("appointment not found")}
	c := newListing(backend)
	require.NoError(t, c.Load(context.Background()))
	before := c.Cards()

	require.Error(t, c.Cancel(context.Background(), "A1", true))
	assert.Equal(t, before, c.Cards())
	assert.Equal(t, 1, backend.listCalls)

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Level)
	assert.Contains(t, notices[0].Message, "appointment not found")
}

func TestNoticesExpireAfterFiveSeconds(t *testing.T) {
	now := testClock()
	clock := func() time.Time { return now }

	backend := &fakeBackend{appts: sampleAppointments()}
	c := NewListingController(backend, logging.New("error")).WithClock(clock)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Cancel(context.Background(), "A1", true))

	require.Len(t, c.Notices(), 1)
	now = now.Add(NoticeTTL + time.Millisecond)
	assert.Empty(t, c.Notices())
}

func TestNoticesCanBeDismissed(t *testing.T) {
	backend := &fakeBackend{appts: sampleAppointments()}
	c := newListing(backend)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Cancel(context.Background(), "A1", true))

	require.Len(t, c.Notices(), 1)
	c.DismissNotices()
	assert.Empty(t, c.Notices())
}
