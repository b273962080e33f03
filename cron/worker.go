package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fieldops/config"
	bookingRepo "fieldops/database/repository/booking"
	offeringRepo "fieldops/database/repository/offering"
	"fieldops/models"
	"fieldops/services/availability"
	"fieldops/utils"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InitAvailabilityWorker runs the async recompute worker in background.
// Concurrency here is the system-wide bound on event-driven recomputations:
// however many documents change at once, at most this many companies are
// being re-aggregated at a time.
func InitAvailabilityWorker(aggregator availability.CompanyAggregator) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(availability.TaskTypeRecompute, handleRecomputeTask(aggregator))

	go func() {
		log.Println("[AvailabilityWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[AvailabilityWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[AvailabilityWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleRecomputeTask(aggregator availability.CompanyAggregator) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		var p availability.RecomputePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Warn("recompute: invalid payload", zap.Error(err))
			return err
		}

		snapshot, err := aggregator.Aggregate(ctx, p.CompanyID, p.ServiceID)
		if err != nil {
			logger.Warn("recompute: aggregation failed",
				zap.String("companyID", p.CompanyID), zap.Error(err))
			return err
		}
		logger.Debug("recompute: snapshot refreshed",
			zap.String("key", models.SnapshotKey(p.CompanyID, p.ServiceID)),
			zap.Bool("available", snapshot.IsAvailable))
		return nil
	}
}

// InitScheduledJobs wires the periodic jobs: the reservation expiry sweep
// every minute and a full snapshot refresh on the configured interval. Both
// are independent of the change reactor and idempotent across runs.
func InitScheduledJobs(bookings bookingRepo.BookingRepository, offerings offeringRepo.OfferingRepository, queue *asynq.Client) *cron.Cron {
	logger := utils.GetLogger()
	c := cron.New()

	if _, err := c.AddFunc("@every 1m", func() {
		expired, err := bookings.ExpireLapsedReservations(time.Now())
		if err != nil {
			logger.Warn("sweep: failed to expire lapsed reservations", zap.Error(err))
			return
		}
		if expired > 0 {
			logger.Info("sweep: expired lapsed reservations", zap.Int64("count", expired))
		}
	}); err != nil {
		logger.Error("cron: failed to schedule expiry sweep", zap.Error(err))
	}

	refreshSpec := fmt.Sprintf("@every %dm", refreshInterval())
	if _, err := c.AddFunc(refreshSpec, func() {
		enqueueRefreshAll(offerings, queue)
	}); err != nil {
		logger.Error("cron: failed to schedule snapshot refresh", zap.Error(err))
	}

	c.Start()
	return c
}

func refreshInterval() int {
	if config.AppConfig.RefreshIntervalMinutes > 0 {
		return config.AppConfig.RefreshIntervalMinutes
	}
	return 15
}

// enqueueRefreshAll queues one coarse recomputation per active offering.
// Dedupe happens naturally on the snapshot key; a failed enqueue only
// delays that company's refresh until the next tick.
func enqueueRefreshAll(offerings offeringRepo.OfferingRepository, queue *asynq.Client) {
	logger := utils.GetLogger()
	active, err := offerings.AllActive()
	if err != nil {
		logger.Warn("refresh: failed to list active offerings", zap.Error(err))
		return
	}
	for _, off := range active {
		task, err := availability.NewRecomputeTask(off.CompanyID, off.ServiceID)
		if err != nil {
			logger.Warn("refresh: failed to build task",
				zap.String("companyID", off.CompanyID), zap.Error(err))
			continue
		}
		if _, err := queue.Enqueue(task); err != nil {
			logger.Warn("refresh: failed to enqueue recompute",
				zap.String("companyID", off.CompanyID), zap.Error(err))
		}
	}
	logger.Info("refresh: queued snapshot recomputations", zap.Int("offerings", len(active)))
}
