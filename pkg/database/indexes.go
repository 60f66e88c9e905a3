package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the proximity queries and reminder scan
// depend on. Safe to call on every startup.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"cases": {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "case_number", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "next_reminder_due", Value: 1}, {Key: "reminder_sent", Value: 1}}},
			{Keys: bson.D{{Key: "reporter_id", Value: 1}}},
			{Keys: bson.D{{Key: "assigned_helpers", Value: 1}}},
		},
		"status_updates": {
			{Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"service_areas": {
			{Keys: bson.D{{Key: "center", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "helper_id", Value: 1}}},
		},
		"users": {
			{Keys: bson.D{{Key: "current_location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "phone", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := m.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	return nil
}
