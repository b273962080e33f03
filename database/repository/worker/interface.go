package workerRepo

import "fieldops/models"

// WorkerRepository defines methods for worker data access.
type WorkerRepository interface {
	// GetByID retrieves a worker by its unique ID.
	GetByID(id string) (*models.Worker, error)
	// EligibleForService returns the company's active workers assigned to
	// the given service. An empty serviceID matches every active worker,
	// which is what the company-wide background refresh wants.
	EligibleForService(companyID, serviceID string) ([]models.Worker, error)
}
