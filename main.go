package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldops/config"
	"fieldops/cron"
	"fieldops/database"
	bookingRepoPkg "fieldops/database/repository/booking"
	offeringRepoPkg "fieldops/database/repository/offering"
	snapshotRepoPkg "fieldops/database/repository/snapshot"
	workerRepoPkg "fieldops/database/repository/worker"
	"fieldops/handlers"
	"fieldops/middleware"
	"fieldops/routes"
	"fieldops/services/availability"
	"fieldops/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	workerRepo := workerRepoPkg.NewMongoWorkerRepo()
	offeringRepo := offeringRepoPkg.NewMongoOfferingRepo()
	snapshotRepo := snapshotRepoPkg.NewMongoSnapshotRepo()

	// availability engine.
	resolver := &availability.DefaultWorkerResolver{
		BookingRepo: bookingRepo,
	}
	aggregator := &availability.DefaultCompanyAggregator{
		WorkerRepo:    workerRepo,
		SnapshotRepo:  snapshotRepo,
		Resolver:      resolver,
		Cache:         utils.GetCacheClient(),
		SnapshotTTL:   time.Duration(config.AppConfig.SnapshotTTLMinutes) * time.Minute,
		MaxConcurrent: int64(config.AppConfig.AvailabilityConcurrency),
	}
	batch := &availability.DefaultBatchCoordinator{
		OfferingRepo:  offeringRepo,
		Aggregator:    aggregator,
		MaxConcurrent: int64(config.AppConfig.AvailabilityConcurrency),
	}

	// background recompute: change reactor feeding the asynq worker.
	queue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queue.Close()

	reactorCtx, stopReactor := context.WithCancel(context.Background())
	defer stopReactor()
	reactor := &availability.ChangeReactor{
		Bookings: database.Collection("bookings"),
		Workers:  database.Collection("workers"),
		Queue:    queue,
	}
	go reactor.Run(reactorCtx)

	cron.InitAvailabilityWorker(aggregator)
	scheduler := cron.InitScheduledJobs(bookingRepo, offeringRepo, queue)
	defer scheduler.Stop()

	// handlers and routes.
	availabilityHandler := handlers.NewAvailabilityHandler(aggregator, batch, snapshotRepo, utils.GetCacheClient(), logger)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, logger)
	routes.RegisterRoutes(router, availabilityHandler, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	stopReactor()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
