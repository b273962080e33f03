package snapshotRepo

import "fieldops/models"

// SnapshotRepository persists derived availability snapshots. Snapshots are
// always fully overwritten under a deterministic key, never patched
// field-by-field, so concurrent recomputations can only race on whole
// documents (last writer wins).
type SnapshotRepository interface {
	// Upsert replaces the snapshot for its company(+service) key, creating
	// it on first write.
	Upsert(snapshot *models.CompanyAvailabilitySnapshot) error
	// GetByKey retrieves the snapshot for a company(+service) key.
	GetByKey(key string) (*models.CompanyAvailabilitySnapshot, error)
}
