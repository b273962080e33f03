package bookingRepo

import (
	"time"

	"fieldops/models"

	"go.mongodb.org/mongo-driver/bson"
)

// BookingRepository defines methods for booking data access. The
// availability engine only reads bookings; writes belong to the booking
// endpoints and the expiry sweep.
type BookingRepository interface {
	// GetByID retrieves a booking by its unique ID.
	GetByID(id string) (*models.Booking, error)
	// ActiveForWorker returns the worker's bookings whose status still
	// blocks their time.
	ActiveForWorker(workerID string) ([]models.Booking, error)
	// Create inserts a new booking record.
	Create(booking *models.Booking) error
	// UpdateWithDocument patches a booking document with the specified update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// ExpireLapsedReservations flips reserved bookings whose hold has lapsed
	// to expired. Returns the number of bookings expired.
	ExpireLapsedReservations(now time.Time) (int64, error)
}
