package snapshotRepo

import (
	"context"
	"fmt"
	"time"

	"fieldops/database"
	"fieldops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSnapshotRepo implements SnapshotRepository using MongoDB.
type MongoSnapshotRepo struct {
	coll *mongo.Collection
}

// NewMongoSnapshotRepo creates a new instance of SnapshotRepository using MongoDB.
func NewMongoSnapshotRepo() SnapshotRepository {
	return &MongoSnapshotRepo{coll: database.Collection("availability_snapshots")}
}

// Upsert keys the document on _id = companyID:serviceID, so a true upsert
// replaces query-then-branch and duplicate rows cannot appear under
// concurrent first-writes.
func (r *MongoSnapshotRepo) Upsert(snapshot *models.CompanyAvailabilitySnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{"_id": snapshot.Key}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, snapshot, opts); err != nil {
		return fmt.Errorf("failed to upsert snapshot %s: %w", snapshot.Key, err)
	}
	return nil
}

func (r *MongoSnapshotRepo) GetByKey(key string) (*models.CompanyAvailabilitySnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var snapshot models.CompanyAvailabilitySnapshot
	if err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot %s: %w", key, err)
	}
	return &snapshot, nil
}
