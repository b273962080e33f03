package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	snapshotRepo "fieldops/database/repository/snapshot"
	workerRepo "fieldops/database/repository/worker"
	"fieldops/models"
	"fieldops/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const defaultResolveConcurrency = 16

// DefaultCompanyAggregator is the company-level rollup. It fans worker
// resolutions out under a weighted semaphore and writes a fresh snapshot
// through on every call; callers that need to avoid write amplification
// debounce above this layer.
type DefaultCompanyAggregator struct {
	WorkerRepo   workerRepo.WorkerRepository
	SnapshotRepo snapshotRepo.SnapshotRepository
	Resolver     WorkerResolver
	Cache        *redis.Client // optional snapshot cache, may be nil
	SnapshotTTL  time.Duration
	// MaxConcurrent caps in-flight worker resolutions per aggregation.
	MaxConcurrent int64
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (a *DefaultCompanyAggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *DefaultCompanyAggregator) concurrency() int64 {
	if a.MaxConcurrent > 0 {
		return a.MaxConcurrent
	}
	return defaultResolveConcurrency
}

// AggregateForSlot answers "is any qualified worker free for this slot".
// Zero eligible workers short-circuits before any booking data is touched.
// The result is built from per-worker identities, never completion order.
func (a *DefaultCompanyAggregator) AggregateForSlot(ctx context.Context, companyID, serviceID string, slot TimeSlot) *models.AvailabilityResult {
	logger := utils.GetLogger()

	result := &models.AvailabilityResult{
		CompanyID: companyID,
		ServiceID: serviceID,
		CheckedAt: a.now(),
	}

	workers, err := a.WorkerRepo.EligibleForService(companyID, serviceID)
	if err != nil {
		// Fail closed: an unreadable roster reports unavailable, not a crash.
		logger.Error("aggregator: failed to load eligible workers",
			zap.String("companyID", companyID), zap.String("serviceID", serviceID), zap.Error(err))
		result.Reason = models.ReasonError
		return result
	}

	result.TotalWorkers = len(workers)
	if len(workers) == 0 {
		result.Reason = models.ReasonNoWorkersForService
		a.persistSnapshot(result)
		return result
	}

	resultsCh := make(chan models.WorkerAvailability, len(workers))
	sem := semaphore.NewWeighted(a.concurrency())
	var wg sync.WaitGroup

	for _, w := range workers {
		wg.Add(1)
		go func(w models.Worker) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				resultsCh <- models.WorkerAvailability{
					WorkerID:   w.ID,
					WorkerName: w.Name,
					Available:  false,
					Reason:     models.ReasonError,
				}
				return
			}
			defer sem.Release(1)
			resultsCh <- a.Resolver.Resolve(ctx, w, slot)
		}(w)
	}

	wg.Wait()
	close(resultsCh)

	for wa := range resultsCh {
		if wa.Available {
			result.AvailableWorkers = append(result.AvailableWorkers, wa)
		} else {
			result.BusyWorkers = append(result.BusyWorkers, wa)
		}
	}

	result.Available = len(result.AvailableWorkers) > 0
	if result.Available {
		result.Reason = models.ReasonFree
	} else {
		result.Reason = models.ReasonAllWorkersBusy
	}

	a.persistSnapshot(result)
	return result
}

// Aggregate is the coarse company-wide variant: one next-24h window per
// worker, answering only "any availability in the window". The change
// reactor and periodic refresh run this so each event recomputes exactly
// one company.
func (a *DefaultCompanyAggregator) Aggregate(ctx context.Context, companyID, serviceID string) (*models.CompanyAvailabilitySnapshot, error) {
	start := a.now()
	window := WindowSlot(start, start.Add(24*time.Hour))
	result := a.AggregateForSlot(ctx, companyID, serviceID, window)
	if result.Reason == models.ReasonError {
		return nil, fmt.Errorf("%w: aggregate for company %s", ErrDataFetch, companyID)
	}
	return a.snapshotFrom(result), nil
}

func (a *DefaultCompanyAggregator) snapshotFrom(result *models.AvailabilityResult) *models.CompanyAvailabilitySnapshot {
	ttl := a.SnapshotTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	now := a.now()
	return &models.CompanyAvailabilitySnapshot{
		Key:              models.SnapshotKey(result.CompanyID, result.ServiceID),
		CompanyID:        result.CompanyID,
		ServiceID:        result.ServiceID,
		IsAvailable:      result.Available,
		AvailableWorkers: len(result.AvailableWorkers),
		TotalWorkers:     result.TotalWorkers,
		LastUpdated:      now,
		ValidUntil:       now.Add(ttl),
	}
}

// persistSnapshot writes the derived rollup through to Mongo and the Redis
// cache. Either write failing is logged and swallowed: the in-flight caller
// already holds the correct answer, only the cache update is lost.
func (a *DefaultCompanyAggregator) persistSnapshot(result *models.AvailabilityResult) {
	logger := utils.GetLogger()
	snapshot := a.snapshotFrom(result)

	if err := a.SnapshotRepo.Upsert(snapshot); err != nil {
		logger.Warn("aggregator: snapshot write failed",
			zap.String("key", snapshot.Key), zap.Error(err))
	}

	if a.Cache == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		logger.Warn("aggregator: snapshot marshal failed", zap.String("key", snapshot.Key), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cacheKey := utils.SnapshotCachePrefix + snapshot.Key
	if err := a.Cache.Set(ctx, cacheKey, payload, time.Until(snapshot.ValidUntil)).Err(); err != nil {
		logger.Warn("aggregator: snapshot cache set failed", zap.String("key", cacheKey), zap.Error(err))
	}
}
