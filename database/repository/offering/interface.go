package offeringRepo

import "fieldops/models"

// OfferingRepository defines methods for company-service offering access.
type OfferingRepository interface {
	// ActiveByService returns all active offerings for one service across companies.
	ActiveByService(serviceID string) ([]models.ServiceOffering, error)
	// AllActive returns every active offering, used by the periodic refresh.
	AllActive() ([]models.ServiceOffering, error)
}
