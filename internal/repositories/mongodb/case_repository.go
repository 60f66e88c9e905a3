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

type caseRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewCaseRepository(db *mongo.Database, cache services.CacheService) interfaces.CaseRepository {
	return &caseRepository{
		collection: db.Collection("cases"),
		cache:      cache,
	}
}

func (r *caseRepository) Create(ctx context.Context, c *models.Case) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	c.Version = 1

	_, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	r.cacheCase(ctx, c)
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Case, error) {
	if c := r.getCaseFromCache(ctx, id.Hex()); c != nil {
		return c, nil
	}

	var c models.Case
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError(utils.ErrCaseNotFound)
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	if !c.IsTerminal() {
		r.cacheCase(ctx, &c)
	}

	return &c, nil
}

func (r *caseRepository) GetByCaseNumber(ctx context.Context, caseNumber string) (*models.Case, error) {
	var c models.Case
	err := r.collection.FindOne(ctx, bson.M{"case_number": caseNumber}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError(utils.ErrCaseNotFound)
		}
		return nil, fmt.Errorf("failed to get case by number: %w", err)
	}

	return &c, nil
}

func (r *caseRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	r.invalidateCaseCache(ctx, id.Hex())
	return nil
}

func (r *caseRepository) UpdateWithVersion(ctx context.Context, id primitive.ObjectID, version int64, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "version": version},
		bson.M{
			"$set": updates,
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to check case existence: %w", err)
		}
		if count == 0 {
			return utils.NotFoundError(utils.ErrCaseNotFound)
		}
		return utils.ConflictError(utils.ErrTransitionConflict)
	}

	r.invalidateCaseCache(ctx, id.Hex())
	return nil
}

func (r *caseRepository) AddAssignedHelper(ctx context.Context, id primitive.ObjectID, helperID primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$addToSet": bson.M{"assigned_helpers": helperID},
			"$set": bson.M{
				"last_status_update": at,
				"updated_at":         at,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to assign helper: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError(utils.ErrCaseNotFound)
	}

	r.invalidateCaseCache(ctx, id.Hex())
	return nil
}

func (r *caseRepository) GetByReporter(ctx context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	filter := bson.M{"reporter_id": reporterID}
	return r.findCasesWithFilter(ctx, filter, params)
}

func (r *caseRepository) GetByHelper(ctx context.Context, helperID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	filter := bson.M{"assigned_helpers": helperID}
	return r.findCasesWithFilter(ctx, filter, params)
}

func (r *caseRepository) GetByStatus(ctx context.Context, status models.CaseStatus, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	filter := bson.M{"status": status}
	return r.findCasesWithFilter(ctx, filter, params)
}

func (r *caseRepository) GetNearbyOpenCases(ctx context.Context, lat, lng, radiusKM float64) ([]*models.Case, error) {
	radiusMeters := radiusKM * 1000

	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
		"status": bson.M{"$in": []models.CaseStatus{
			models.CaseStatusOpen,
			models.CaseStatusAssigned,
		}},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(utils.MaxNearbyHelpers))
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby cases: %w", err)
	}
	defer cursor.Close(ctx)

	var cases []*models.Case
	for cursor.Next(ctx) {
		var c models.Case
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode case: %w", err)
		}
		cases = append(cases, &c)
	}

	return cases, nil
}

func (r *caseRepository) ClaimDueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Case, error) {
	filter := bson.M{
		"status": bson.M{"$in": []models.CaseStatus{
			models.CaseStatusAssigned,
			models.CaseStatusInProgress,
		}},
		"reminder_sent":     false,
		"next_reminder_due": bson.M{"$lte": now},
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "next_reminder_due", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []*models.Case
	for cursor.Next(ctx) {
		var c models.Case
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode case: %w", err)
		}
		candidates = append(candidates, &c)
	}

	// Claim each candidate with a conditional update keyed on
	// reminder_sent=false. An overlapping sweep loses the race and skips
	// the case, so no reminder is delivered twice.
	var claimed []*models.Case
	for _, c := range candidates {
		result, err := r.collection.UpdateOne(
			ctx,
			bson.M{"_id": c.ID, "reminder_sent": false},
			bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": now}},
		)
		if err != nil {
			return claimed, fmt.Errorf("failed to claim reminder: %w", err)
		}
		if result.ModifiedCount == 1 {
			c.ReminderSent = true
			claimed = append(claimed, c)
			r.invalidateCaseCache(ctx, c.ID.Hex())
		}
	}

	return claimed, nil
}

func (r *caseRepository) findCasesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	if params.Search != "" {
		searchFields := []string{"case_number", "description", "location.address", "location.landmark"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find cases: %w", err)
	}
	defer cursor.Close(ctx)

	var cases []*models.Case
	for cursor.Next(ctx) {
		var c models.Case
		if err := cursor.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("failed to decode case: %w", err)
		}
		cases = append(cases, &c)
	}

	return cases, total, nil
}

func (r *caseRepository) cacheCase(ctx context.Context, c *models.Case) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf(utils.CacheKeyCase, c.ID.Hex())
		r.cache.Set(ctx, cacheKey, c, utils.CacheKeyCaseTTL)
	}
}

func (r *caseRepository) getCaseFromCache(ctx context.Context, caseID string) *models.Case {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf(utils.CacheKeyCase, caseID)
	var c models.Case
	if err := r.cache.Get(ctx, cacheKey, &c); err != nil {
		return nil
	}

	return &c
}

func (r *caseRepository) invalidateCaseCache(ctx context.Context, caseID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf(utils.CacheKeyCase, caseID)
		r.cache.Delete(ctx, cacheKey)
	}
}
