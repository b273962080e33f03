package models

import "time"

// CompanyAvailabilitySnapshot is a derived, overwritable cache of the last
// aggregation for a company (optionally scoped to one service). It is never
// a source of truth: concurrent recomputations are last-writer-wins and each
// snapshot carries its own LastUpdated.
type CompanyAvailabilitySnapshot struct {
	Key              string    `bson:"_id" json:"-"`
	CompanyID        string    `bson:"company_id" json:"companyId"`
	ServiceID        string    `bson:"service_id,omitempty" json:"serviceId,omitempty"`
	IsAvailable      bool      `bson:"is_available" json:"isAvailable"`
	AvailableWorkers int       `bson:"available_workers" json:"availableWorkers"`
	TotalWorkers     int       `bson:"total_workers" json:"totalWorkers"`
	LastUpdated      time.Time `bson:"last_updated" json:"lastUpdated"`
	ValidUntil       time.Time `bson:"valid_until" json:"validUntil"`
}

// SnapshotKey builds the deterministic upsert key for a company(+service)
// snapshot, so two concurrent first-writes can never create duplicate rows.
func SnapshotKey(companyID, serviceID string) string {
	if serviceID == "" {
		return companyID
	}
	return companyID + ":" + serviceID
}
