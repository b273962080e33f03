package workerRepo

import (
	"context"
	"fmt"
	"time"

	"fieldops/database"
	"fieldops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWorkerRepo implements WorkerRepository using MongoDB.
type MongoWorkerRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkerRepo creates a new instance of WorkerRepository using MongoDB.
func NewMongoWorkerRepo() WorkerRepository {
	return &MongoWorkerRepo{coll: database.Collection("workers")}
}

func (r *MongoWorkerRepo) GetByID(id string) (*models.Worker, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var worker models.Worker
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&worker); err != nil {
		return nil, fmt.Errorf("failed to fetch worker with id %s: %w", id, err)
	}
	return &worker, nil
}

func (r *MongoWorkerRepo) EligibleForService(companyID, serviceID string) ([]models.Worker, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{
		"company_id": companyID,
		"is_active":  true,
	}
	if serviceID != "" {
		filter["service_ids"] = serviceID
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible workers for company %s: %w", companyID, err)
	}
	defer cursor.Close(ctx)
	var workers []models.Worker
	for cursor.Next(ctx) {
		var w models.Worker
		if err := cursor.Decode(&w); err != nil {
			return nil, fmt.Errorf("failed to decode worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, nil
}
