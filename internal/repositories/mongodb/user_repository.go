package mongodb

import (
	"context"
	"fmt"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/services"
	"pawrescue/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewUserRepository(db *mongo.Database, cache services.CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
		cache:      cache,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf(utils.CacheKeyUser, id.Hex())
		var user models.User
		if err := r.cache.Get(ctx, cacheKey, &user); err == nil {
			return &user, nil
		}
	}

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError(utils.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if r.cache != nil {
		cacheKey := fmt.Sprintf(utils.CacheKeyUser, id.Hex())
		r.cache.Set(ctx, cacheKey, &user, utils.CacheKeyUserTTL)
	}

	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"_id":        bson.M{"$in": ids},
		"deleted_at": nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"phone": phone, "deleted_at": nil}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError(utils.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email, "deleted_at": nil}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError(utils.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError(utils.ErrUserNotFound)
	}

	if r.cache != nil {
		r.cache.Delete(ctx, fmt.Sprintf(utils.CacheKeyUser, id.Hex()))
	}

	return nil
}

func (r *userRepository) GetNearbyHelpers(ctx context.Context, lat, lng, radiusKM float64, filters *interfaces.HelperFilters) ([]*models.User, error) {
	radiusMeters := radiusKM * 1000

	filter := bson.M{
		"current_location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
		"deleted_at": nil,
	}

	if filters != nil {
		if filters.UserType != "" {
			filter["user_type"] = filters.UserType
		} else {
			filter["user_type"] = bson.M{"$in": []models.UserType{
				models.UserTypeHelper,
				models.UserTypeNGO,
			}}
		}
		if filters.Verification != "" {
			filter["verification_status"] = filters.Verification
		}
		if filters.ActiveOnly {
			filter["status"] = models.UserStatusActive
		}
	} else {
		filter["user_type"] = bson.M{"$in": []models.UserType{
			models.UserTypeHelper,
			models.UserTypeNGO,
		}}
	}

	// $near returns documents in ascending distance order.
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(utils.MaxNearbyHelpers))
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby helpers: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, nil
}
