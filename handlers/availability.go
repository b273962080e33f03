package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	snapshotRepo "fieldops/database/repository/snapshot"
	"fieldops/models"
	"fieldops/services/availability"
	"fieldops/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// suggestions returned when no provider can take the slot. Static by design;
// the client renders them verbatim.
var noAvailabilitySuggestions = []string{
	"Try a different time slot",
	"Try a nearby date",
	"Check back shortly, availability updates in real time",
}

// AvailabilityHandler exposes the availability engine over HTTP. Business
// outcomes (no workers, all busy) come back as 200 with a success flag;
// only unhandled panics surface as 500 via the recovery middleware.
type AvailabilityHandler struct {
	Aggregator availability.CompanyAggregator
	Batch      availability.BatchCoordinator
	Snapshots  snapshotRepo.SnapshotRepository
	Cache      *redis.Client
	Logger     *zap.Logger
}

// NewAvailabilityHandler creates an AvailabilityHandler.
func NewAvailabilityHandler(aggregator availability.CompanyAggregator, batch availability.BatchCoordinator, snapshots snapshotRepo.SnapshotRepository, cache *redis.Client, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		Aggregator: aggregator,
		Batch:      batch,
		Snapshots:  snapshots,
		Cache:      cache,
		Logger:     logger,
	}
}

type checkAvailabilityRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
	ServiceID string `json:"serviceId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
}

// CheckAvailability answers whether one company can serve one slot.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "companyId, serviceId, date and time are required", err.Error())
		return
	}

	slot, err := availability.ParseSlot(req.Date, req.Time)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date/time slot", err.Error())
		return
	}

	res := h.Aggregator.AggregateForSlot(c.Request.Context(), req.CompanyID, req.ServiceID, slot)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"available":        res.Available,
		"reason":           res.Reason,
		"availableWorkers": len(res.AvailableWorkers),
		"totalWorkers":     res.TotalWorkers,
		"message":          availabilityMessage(res),
	})
}

func availabilityMessage(res *models.AvailabilityResult) string {
	switch res.Reason {
	case models.ReasonNoWorkersForService:
		return "No workers are assigned to this service"
	case models.ReasonAllWorkersBusy:
		return "All workers are booked for the requested time"
	case models.ReasonError:
		return "Availability could not be determined, assuming unavailable"
	default:
		return fmt.Sprintf("%d of %d workers available", len(res.AvailableWorkers), res.TotalWorkers)
	}
}

type batchAvailabilityRequest struct {
	ServiceID string `json:"serviceId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	// Location is accepted for forward compatibility but not used for
	// filtering yet.
	Location string `json:"location,omitempty"`
}

// GetAvailableCompanies fans the check out across every company offering
// the service.
func (h *AvailabilityHandler) GetAvailableCompanies(c *gin.Context) {
	batch, ok := h.runBatch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"totalCompanies":     batch.TotalCompanies,
		"availableCompanies": batch.AvailableCompanies,
		"companies":          batch.Companies,
		"availableOnly":      batch.AvailableOnly,
	})
}

// RealtimeAvailability is the client-facing variant of the batch check,
// shaped for the booking screen.
func (h *AvailabilityHandler) RealtimeAvailability(c *gin.Context) {
	batch, ok := h.runBatch(c)
	if !ok {
		return
	}

	resp := gin.H{
		"success":            true,
		"available":          batch.AvailableCompanies > 0,
		"canBook":            batch.AvailableCompanies > 0,
		"availableProviders": batch.AvailableCompanies,
		"totalProviders":     batch.TotalCompanies,
		"companies":          batch.Companies,
	}
	if batch.AvailableCompanies == 0 {
		resp["suggestions"] = noAvailabilitySuggestions
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AvailabilityHandler) runBatch(c *gin.Context) (*models.BatchResult, bool) {
	var req batchAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "serviceId, date and time are required", err.Error())
		return nil, false
	}

	batch, err := h.Batch.BatchCheck(c.Request.Context(), req.ServiceID, req.Date, req.Time)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidSlotFormat) {
			utils.JSONError(c, http.StatusBadRequest, "invalid date/time slot", err.Error())
			return nil, false
		}
		// The offerings discovery itself failed; there was no smaller unit
		// to degrade into.
		utils.JSONError(c, http.StatusInternalServerError, "availability check failed", err.Error())
		return nil, false
	}
	return batch, true
}

// GetSnapshot serves the last persisted rollup for a company, Redis first,
// Mongo as fallback. This is the cheap read path the snapshot exists for.
func (h *AvailabilityHandler) GetSnapshot(c *gin.Context) {
	companyID := c.Param("companyId")
	serviceID := c.Query("serviceId")
	key := models.SnapshotKey(companyID, serviceID)

	if h.Cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		raw, err := h.Cache.Get(ctx, utils.SnapshotCachePrefix+key).Result()
		if err == nil {
			var snapshot models.CompanyAvailabilitySnapshot
			if decodeErr := json.Unmarshal([]byte(raw), &snapshot); decodeErr == nil {
				c.JSON(http.StatusOK, gin.H{"success": true, "snapshot": snapshot, "cached": true})
				return
			}
			h.Logger.Warn("snapshot: cached entry unreadable, falling back to store", zap.String("key", key))
		}
	}

	snapshot, err := h.Snapshots.GetByKey(key)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "no availability snapshot for this company yet",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "snapshot": snapshot, "cached": false})
}
