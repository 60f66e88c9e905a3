package mongodb

import (
	"context"
	"fmt"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type auditLogRepository struct {
	collection *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) interfaces.AuditLogRepository {
	return &auditLogRepository{
		collection: db.Collection("audit_logs"),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *auditLogRepository) GetByResource(ctx context.Context, resource, resourceID string, limit int) ([]*models.AuditLog, error) {
	filter := bson.M{"resource": resource, "resource_id": resourceID}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.AuditLog
	for cursor.Next(ctx) {
		var entry models.AuditLog
		if err := cursor.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode audit log: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
