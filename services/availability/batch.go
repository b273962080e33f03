package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"

	offeringRepo "fieldops/database/repository/offering"
	"fieldops/models"
	"fieldops/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultBatchCoordinator fans one service query out across every company
// offering it, with a full fan-in barrier: no partial results leave here.
type DefaultBatchCoordinator struct {
	OfferingRepo offeringRepo.OfferingRepository
	Aggregator   CompanyAggregator
	// MaxConcurrent caps in-flight company aggregations per batch.
	MaxConcurrent int64
}

func (c *DefaultBatchCoordinator) concurrency() int64 {
	if c.MaxConcurrent > 0 {
		return c.MaxConcurrent
	}
	return defaultResolveConcurrency
}

// BatchCheck discovers active offerings for the service, dedupes them by
// company, aggregates each company concurrently and waits for all of them.
// One company failing (or panicking) becomes an error-flagged unavailable
// entry; it never cancels siblings or aborts the batch.
func (c *DefaultBatchCoordinator) BatchCheck(ctx context.Context, serviceID, date, timeLabel string) (*models.BatchResult, error) {
	logger := utils.GetLogger()

	slot, err := ParseSlot(date, timeLabel)
	if err != nil {
		return nil, err
	}

	offerings, err := c.OfferingRepo.ActiveByService(serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: offerings for service %s: %v", ErrDataFetch, serviceID, err)
	}

	// One entry per company; the first offering seen supplies display fields.
	seen := make(map[string]bool, len(offerings))
	var distinct []models.ServiceOffering
	for _, off := range offerings {
		if seen[off.CompanyID] {
			continue
		}
		seen[off.CompanyID] = true
		distinct = append(distinct, off)
	}

	resultsCh := make(chan models.CompanyAvailability, len(distinct))
	sem := semaphore.NewWeighted(c.concurrency())
	var wg sync.WaitGroup

	for _, off := range distinct {
		wg.Add(1)
		go func(off models.ServiceOffering) {
			defer wg.Done()
			defer func() {
				// Bulkhead: a panicking aggregation degrades to one
				// error-flagged entry instead of taking the batch down.
				if r := recover(); r != nil {
					logger.Error("batch: company aggregation panicked",
						zap.String("companyID", off.CompanyID), zap.Any("panic", r))
					resultsCh <- models.CompanyAvailability{
						CompanyID:   off.CompanyID,
						CompanyName: off.CompanyName,
						ServiceName: off.ServiceName,
						Available:   false,
						Error:       "availability check failed",
					}
				}
			}()
			if err := sem.Acquire(ctx, 1); err != nil {
				resultsCh <- models.CompanyAvailability{
					CompanyID:   off.CompanyID,
					CompanyName: off.CompanyName,
					ServiceName: off.ServiceName,
					Available:   false,
					Error:       err.Error(),
				}
				return
			}
			defer sem.Release(1)

			res := c.Aggregator.AggregateForSlot(ctx, off.CompanyID, serviceID, slot)
			entry := models.CompanyAvailability{
				CompanyID:        off.CompanyID,
				CompanyName:      off.CompanyName,
				ServiceName:      off.ServiceName,
				Available:        res.Available,
				AvailableWorkers: len(res.AvailableWorkers),
				TotalWorkers:     res.TotalWorkers,
			}
			if res.Reason == models.ReasonError {
				entry.Error = "availability check failed"
			}
			resultsCh <- entry
		}(off)
	}

	wg.Wait()
	close(resultsCh)

	batch := &models.BatchResult{
		ServiceID:      serviceID,
		TotalCompanies: len(distinct),
	}
	for entry := range resultsCh {
		batch.Companies = append(batch.Companies, entry)
		if entry.Available {
			batch.AvailableCompanies++
			batch.AvailableOnly = append(batch.AvailableOnly, entry)
		}
	}

	// Results are keyed by company identity; order them deterministically
	// rather than by completion.
	sort.Slice(batch.Companies, func(i, j int) bool {
		return batch.Companies[i].CompanyID < batch.Companies[j].CompanyID
	})
	sort.Slice(batch.AvailableOnly, func(i, j int) bool {
		return batch.AvailableOnly[i].CompanyID < batch.AvailableOnly[j].CompanyID
	})

	return batch, nil
}
