package handlers

import (
	"net/http"
	"time"

	"fieldops/config"
	bookingRepo "fieldops/database/repository/booking"
	"fieldops/models"
	"fieldops/services/availability"
	"fieldops/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingHandler exposes the thin booking write path. A reservation is a
// short-lived hold: it blocks the worker immediately and lapses via the
// expiry sweep if never confirmed.
type BookingHandler struct {
	BookingRepo bookingRepo.BookingRepository
	Logger      *zap.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(repo bookingRepo.BookingRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{BookingRepo: repo, Logger: logger}
}

type reserveBookingRequest struct {
	CompanyID    string `json:"companyId" binding:"required"`
	WorkerID     string `json:"workerId" binding:"required"`
	ServiceID    string `json:"serviceId" binding:"required"`
	Date         string `json:"date" binding:"required"`
	Time         string `json:"time" binding:"required"`
	CustomerName string `json:"customerName,omitempty"`
	ServiceName  string `json:"serviceName,omitempty"`
}

// ReserveBooking places a reserved hold on a worker's slot.
func (h *BookingHandler) ReserveBooking(c *gin.Context) {
	var req reserveBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "companyId, workerId, serviceId, date and time are required", err.Error())
		return
	}

	if _, err := availability.ParseSlot(req.Date, req.Time); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date/time slot", err.Error())
		return
	}

	holdMinutes := config.AppConfig.ReservationHoldMinutes
	if holdMinutes <= 0 {
		holdMinutes = 15
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(holdMinutes) * time.Minute)

	booking := &models.Booking{
		ID:            uuid.New().String(),
		CompanyID:     req.CompanyID,
		WorkerID:      req.WorkerID,
		ServiceID:     req.ServiceID,
		ServiceName:   req.ServiceName,
		CustomerName:  req.CustomerName,
		Status:        models.BookingStatusReserved,
		ScheduledDate: req.Date,
		ScheduledTime: req.Time,
		ExpiresAt:     &expiresAt,
		CreatedAt:     now,
	}

	if err := h.BookingRepo.Create(booking); err != nil {
		h.Logger.Error("booking: failed to create reservation",
			zap.String("workerID", req.WorkerID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to reserve booking", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"bookingId": booking.ID,
		"status":    booking.Status,
		"expiresAt": expiresAt,
	})
}

type updateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus moves a booking through its lifecycle. The change
// reactor picks the write up and refreshes the owning company's snapshot.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	id := c.Param("id")
	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "status is required", err.Error())
		return
	}
	if !models.IsBlockingStatus(req.Status) &&
		req.Status != models.BookingStatusTripEnded &&
		req.Status != models.BookingStatusExpired &&
		req.Status != models.BookingStatusCompleted &&
		req.Status != models.BookingStatusCancelled {
		utils.JSONError(c, http.StatusBadRequest, "unknown booking status", req.Status)
		return
	}

	if err := h.BookingRepo.UpdateWithDocument(id, map[string]interface{}{"status": req.Status}); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookingId": id, "status": req.Status})
}
