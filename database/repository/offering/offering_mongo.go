package offeringRepo

import (
	"context"
	"fmt"
	"time"

	"fieldops/database"
	"fieldops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOfferingRepo implements OfferingRepository using MongoDB.
type MongoOfferingRepo struct {
	coll *mongo.Collection
}

// NewMongoOfferingRepo creates a new instance of OfferingRepository using MongoDB.
func NewMongoOfferingRepo() OfferingRepository {
	return &MongoOfferingRepo{coll: database.Collection("service_offerings")}
}

func (r *MongoOfferingRepo) ActiveByService(serviceID string) ([]models.ServiceOffering, error) {
	return r.find(bson.M{"service_id": serviceID, "active": true})
}

func (r *MongoOfferingRepo) AllActive() ([]models.ServiceOffering, error) {
	return r.find(bson.M{"active": true})
}

func (r *MongoOfferingRepo) find(filter bson.M) ([]models.ServiceOffering, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find service offerings: %w", err)
	}
	defer cursor.Close(ctx)
	var offerings []models.ServiceOffering
	for cursor.Next(ctx) {
		var o models.ServiceOffering
		if err := cursor.Decode(&o); err != nil {
			return nil, fmt.Errorf("failed to decode service offering: %w", err)
		}
		offerings = append(offerings, o)
	}
	return offerings, nil
}
