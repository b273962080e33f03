package availability

import (
	"context"
	"errors"
	"testing"

	"fieldops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorker() models.Worker {
	return models.Worker{ID: "w1", CompanyID: "c1", Name: "Alex", IsActive: true, ServiceIDs: []string{"plumbing"}}
}

func confirmedBooking(id, date, label string) models.Booking {
	return models.Booking{
		ID:            id,
		CompanyID:     "c1",
		WorkerID:      "w1",
		Status:        models.BookingStatusConfirmed,
		ScheduledDate: date,
		ScheduledTime: label,
		CustomerName:  "Jordan",
		ServiceName:   "Pipe repair",
	}
}

func TestResolveReportsConflictForOverlappingBooking(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[string][]models.Booking{
		"w1": {confirmedBooking("b1", "2026-02-04", "10:00 AM - 12:00 PM")},
	}}
	r := &DefaultWorkerResolver{BookingRepo: repo}

	res := r.Resolve(context.Background(), testWorker(), mustSlot(t, "2026-02-04", "11:00 AM - 1:00 PM"))
	assert.False(t, res.Available)
	assert.Equal(t, models.ReasonTimeConflict, res.Reason)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, "b1", res.Conflict.BookingID)
	assert.Equal(t, "2026-02-04", res.Conflict.Date)
	assert.Equal(t, "Jordan", res.Conflict.CustomerName)
}

func TestResolveReportsFreeForAdjacentSlot(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[string][]models.Booking{
		"w1": {confirmedBooking("b1", "2026-02-04", "10:00 AM - 12:00 PM")},
	}}
	r := &DefaultWorkerResolver{BookingRepo: repo}

	res := r.Resolve(context.Background(), testWorker(), mustSlot(t, "2026-02-04", "12:00 PM - 2:00 PM"))
	assert.True(t, res.Available)
	assert.Equal(t, models.ReasonFree, res.Reason)
	assert.Nil(t, res.Conflict)
}

func TestResolveIgnoresTerminalStatuses(t *testing.T) {
	b := confirmedBooking("b1", "2026-02-04", "10:00 AM - 12:00 PM")
	b.Status = models.BookingStatusTripEnded
	repo := &fakeBookingRepo{bookings: map[string][]models.Booking{"w1": {b}}}
	r := &DefaultWorkerResolver{BookingRepo: repo}

	res := r.Resolve(context.Background(), testWorker(), mustSlot(t, "2026-02-04", "10:00 AM - 12:00 PM"))
	assert.True(t, res.Available)
}

func TestResolveSkipsBookingsWithoutUsableSlots(t *testing.T) {
	malformed := models.Booking{ID: "b-legacy", WorkerID: "w1", Status: models.BookingStatusConfirmed}
	garbled := confirmedBooking("b-garbled", "2026-02-04", "whenever")
	repo := &fakeBookingRepo{bookings: map[string][]models.Booking{
		"w1": {malformed, garbled},
	}}
	r := &DefaultWorkerResolver{BookingRepo: repo}

	res := r.Resolve(context.Background(), testWorker(), mustSlot(t, "2026-02-04", "10:00 AM - 12:00 PM"))
	assert.True(t, res.Available, "records without usable slots cannot block")
}

func TestResolveDegradesFetchFailureToBusy(t *testing.T) {
	repo := &fakeBookingRepo{err: errors.New("connection reset")}
	r := &DefaultWorkerResolver{BookingRepo: repo}

	res := r.Resolve(context.Background(), testWorker(), mustSlot(t, "2026-02-04", "10:00 AM - 12:00 PM"))
	assert.False(t, res.Available)
	assert.Equal(t, models.ReasonError, res.Reason)
}
