package availability

import (
	"context"

	"fieldops/models"
)

// WorkerResolver answers whether one worker is free for one slot.
// Implementations must fail closed: any uncertainty resolves to busy, and
// Resolve never returns an error a larger aggregation could trip over.
type WorkerResolver interface {
	Resolve(ctx context.Context, worker models.Worker, slot TimeSlot) models.WorkerAvailability
}

// CompanyAggregator rolls worker availability up to one company.
type CompanyAggregator interface {
	// AggregateForSlot answers the slot-specific question and writes
	// through a fresh snapshot.
	AggregateForSlot(ctx context.Context, companyID, serviceID string, slot TimeSlot) *models.AvailabilityResult
	// Aggregate is the coarse variant: any availability in the next 24
	// hours, used by the change reactor and periodic refresh.
	Aggregate(ctx context.Context, companyID, serviceID string) (*models.CompanyAvailabilitySnapshot, error)
}

// BatchCoordinator fans one service query out across every company offering it.
type BatchCoordinator interface {
	BatchCheck(ctx context.Context, serviceID, date, timeLabel string) (*models.BatchResult, error)
}
