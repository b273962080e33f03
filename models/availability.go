package models

import "time"

// AvailabilityReason explains an availability verdict.
type AvailabilityReason string

const (
	ReasonFree                AvailabilityReason = "FREE"
	ReasonTimeConflict        AvailabilityReason = "TIME_CONFLICT"
	ReasonNoWorkersForService AvailabilityReason = "NO_WORKERS_FOR_SERVICE"
	ReasonAllWorkersBusy      AvailabilityReason = "ALL_WORKERS_BUSY"
	ReasonError               AvailabilityReason = "ERROR"
)

// BookingConflict carries diagnostics about the booking that makes a worker busy.
type BookingConflict struct {
	BookingID    string `json:"bookingId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	CustomerName string `json:"customerName,omitempty"`
	ServiceName  string `json:"serviceName,omitempty"`
}

// WorkerAvailability is the per-worker resolution outcome.
type WorkerAvailability struct {
	WorkerID   string             `json:"workerId"`
	WorkerName string             `json:"workerName,omitempty"`
	Available  bool               `json:"available"`
	Reason     AvailabilityReason `json:"reason"`
	Conflict   *BookingConflict   `json:"conflict,omitempty"`
}

// AvailabilityResult is the ephemeral outcome of one company aggregation.
// It is constructed per call and never persisted; the snapshot collection
// holds the durable rollup.
type AvailabilityResult struct {
	CompanyID        string               `json:"companyId"`
	ServiceID        string               `json:"serviceId"`
	Available        bool                 `json:"available"`
	Reason           AvailabilityReason   `json:"reason"`
	AvailableWorkers []WorkerAvailability `json:"availableWorkers"`
	BusyWorkers      []WorkerAvailability `json:"busyWorkers"`
	TotalWorkers     int                  `json:"totalWorkers"`
	CheckedAt        time.Time            `json:"checkedAt"`
}

// CompanyAvailability is one company's entry in a batch check, annotated
// with display fields from the service offering.
type CompanyAvailability struct {
	CompanyID        string `json:"companyId"`
	CompanyName      string `json:"companyName"`
	ServiceName      string `json:"serviceName"`
	Available        bool   `json:"available"`
	AvailableWorkers int    `json:"availableWorkers"`
	TotalWorkers     int    `json:"totalWorkers"`
	Error            string `json:"error,omitempty"`
}

// BatchResult is the fan-in of a multi-company availability check. Companies
// always holds every discovered company so callers can tell "zero results"
// apart from "all busy"; AvailableOnly is the filtered view.
type BatchResult struct {
	ServiceID          string                `json:"serviceId"`
	TotalCompanies     int                   `json:"totalCompanies"`
	AvailableCompanies int                   `json:"availableCompanies"`
	Companies          []CompanyAvailability `json:"companies"`
	AvailableOnly      []CompanyAvailability `json:"availableOnly"`
}
