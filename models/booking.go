package models

import "time"

// Booking statuses. The blocking set still occupies a worker's time;
// terminal statuses never count against availability.
const (
	BookingStatusPending    = "pending"
	BookingStatusReserved   = "reserved"
	BookingStatusAssigned   = "assigned"
	BookingStatusInProgress = "in-progress"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusTripEnded  = "tripEnded"
	BookingStatusExpired    = "expired"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
)

// BlockingStatuses lists the statuses that make a booking conflict-relevant.
// Reserved holds block until the expiry sweep flips them to expired.
var BlockingStatuses = []string{
	BookingStatusPending,
	BookingStatusReserved,
	BookingStatusAssigned,
	BookingStatusInProgress,
	BookingStatusConfirmed,
}

// IsBlockingStatus reports whether a booking in the given status occupies
// its worker's time.
func IsBlockingStatus(status string) bool {
	for _, s := range BlockingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Booking represents a booking record. Slot information comes in two shapes:
// legacy records carry a date plus a "10:00 AM - 12:00 PM" label, newer
// records carry absolute start/end timestamps. Both are normalized at the
// availability boundary; a record with neither shape cannot block anyone.
type Booking struct {
	ID           string     `bson:"id" json:"id"`
	CompanyID    string     `bson:"company_id" json:"companyId"`
	WorkerID     string     `bson:"worker_id" json:"workerId"`
	ServiceID    string     `bson:"service_id" json:"serviceId"`
	ServiceName  string     `bson:"service_name,omitempty" json:"serviceName,omitempty"`
	CustomerName string     `bson:"customer_name,omitempty" json:"customerName,omitempty"`
	Status       string     `bson:"status" json:"status"`
	// Legacy slot shape.
	ScheduledDate string `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	ScheduledTime string `bson:"scheduledTime,omitempty" json:"scheduledTime,omitempty"`
	// Structured slot shape.
	StartTime *time.Time `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime   *time.Time `bson:"endTime,omitempty" json:"endTime,omitempty"`
	// ExpiresAt bounds how long a reserved hold keeps blocking.
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
}
