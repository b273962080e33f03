package availability

import (
	"context"

	bookingRepo "fieldops/database/repository/booking"
	"fieldops/models"
	"fieldops/utils"

	"go.uber.org/zap"
)

// DefaultWorkerResolver resolves one worker against one requested slot by
// scanning their blocking bookings.
type DefaultWorkerResolver struct {
	BookingRepo bookingRepo.BookingRepository
}

// Resolve returns busy with the first conflicting booking found, free when
// nothing overlaps, and degrades any fetch failure to "assumed busy" with
// ReasonError. A single worker's bad read must never crash the aggregation
// depending on it.
func (r *DefaultWorkerResolver) Resolve(ctx context.Context, worker models.Worker, slot TimeSlot) models.WorkerAvailability {
	logger := utils.GetLogger()

	result := models.WorkerAvailability{
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
	}

	bookings, err := r.BookingRepo.ActiveForWorker(worker.ID)
	if err != nil {
		logger.Warn("resolver: failed to fetch bookings, assuming busy",
			zap.String("workerID", worker.ID), zap.Error(err))
		result.Available = false
		result.Reason = models.ReasonError
		return result
	}

	for _, b := range bookings {
		bookingSlot, err := NormalizeBookingSlot(b)
		if err != nil {
			// Data-quality issue, not a failure: a record without a usable
			// slot cannot block anyone.
			logger.Warn("resolver: skipping booking with unusable slot",
				zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}
		if slot.Overlaps(bookingSlot) {
			result.Available = false
			result.Reason = models.ReasonTimeConflict
			result.Conflict = &models.BookingConflict{
				BookingID:    b.ID,
				Date:         bookingSlot.Date,
				Time:         bookingSlot.StartLabel + slotLabelSeparator + bookingSlot.EndLabel,
				CustomerName: b.CustomerName,
				ServiceName:  b.ServiceName,
			}
			return result
		}
	}

	result.Available = true
	result.Reason = models.ReasonFree
	return result
}
