package mongodb

import (
	"context"
	"fmt"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type serviceAreaRepository struct {
	collection *mongo.Collection
}

func NewServiceAreaRepository(db *mongo.Database) interfaces.ServiceAreaRepository {
	return &serviceAreaRepository{
		collection: db.Collection("service_areas"),
	}
}

func (r *serviceAreaRepository) Create(ctx context.Context, area *models.ServiceArea) error {
	area.ID = primitive.NewObjectID()
	area.CreatedAt = time.Now()
	area.UpdatedAt = area.CreatedAt

	_, err := r.collection.InsertOne(ctx, area)
	if err != nil {
		return fmt.Errorf("failed to create service area: %w", err)
	}

	return nil
}

func (r *serviceAreaRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceArea, error) {
	var area models.ServiceArea
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&area)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError(utils.ErrAreaNotFound)
		}
		return nil, fmt.Errorf("failed to get service area: %w", err)
	}

	return &area, nil
}

func (r *serviceAreaRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update service area: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError(utils.ErrAreaNotFound)
	}

	return nil
}

func (r *serviceAreaRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *serviceAreaRepository) GetByHelper(ctx context.Context, helperID primitive.ObjectID) ([]*models.ServiceArea, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"helper_id": helperID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find service areas: %w", err)
	}
	defer cursor.Close(ctx)

	var areas []*models.ServiceArea
	for cursor.Next(ctx) {
		var area models.ServiceArea
		if err := cursor.Decode(&area); err != nil {
			return nil, fmt.Errorf("failed to decode service area: %w", err)
		}
		areas = append(areas, &area)
	}

	return areas, nil
}

func (r *serviceAreaRepository) GetNearCenter(ctx context.Context, lat, lng, maxDistanceKM float64) ([]*models.ServiceArea, error) {
	radiusMeters := maxDistanceKM * 1000

	filter := bson.M{
		"center": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
		"is_active": true,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find service areas near point: %w", err)
	}
	defer cursor.Close(ctx)

	var areas []*models.ServiceArea
	for cursor.Next(ctx) {
		var area models.ServiceArea
		if err := cursor.Decode(&area); err != nil {
			return nil, fmt.Errorf("failed to decode service area: %w", err)
		}
		areas = append(areas, &area)
	}

	return areas, nil
}
