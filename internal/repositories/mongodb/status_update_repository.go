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
)

type statusUpdateRepository struct {
	collection     *mongo.Collection
	caseCollection *mongo.Collection
	// Transactions need a replica set. When disabled the repository falls
	// back to sequential writes with a compensating delete.
	txEnabled bool
}

func NewStatusUpdateRepository(db *mongo.Database, txEnabled bool) interfaces.StatusUpdateRepository {
	return &statusUpdateRepository{
		collection:     db.Collection("status_updates"),
		caseCollection: db.Collection("cases"),
		txEnabled:      txEnabled,
	}
}

func (r *statusUpdateRepository) Create(ctx context.Context, update *models.StatusUpdate) error {
	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to create status update: %w", err)
	}

	return nil
}

func (r *statusUpdateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.StatusUpdate, error) {
	var update models.StatusUpdate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&update)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError(utils.ErrUpdateNotFound)
		}
		return nil, fmt.Errorf("failed to get status update: %w", err)
	}

	return &update, nil
}

func (r *statusUpdateRepository) GetByCase(ctx context.Context, caseID primitive.ObjectID, params *utils.PaginationParams) ([]*models.StatusUpdate, int64, error) {
	filter := bson.M{"case_id": caseID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count status updates: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find status updates: %w", err)
	}
	defer cursor.Close(ctx)

	var updates []*models.StatusUpdate
	for cursor.Next(ctx) {
		var update models.StatusUpdate
		if err := cursor.Decode(&update); err != nil {
			return nil, 0, fmt.Errorf("failed to decode status update: %w", err)
		}
		updates = append(updates, &update)
	}

	return updates, total, nil
}

func (r *statusUpdateRepository) MarkRead(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"read_by": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark status update read: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError(utils.ErrUpdateNotFound)
	}

	return nil
}

func (r *statusUpdateRepository) CreateWithCaseMutation(ctx context.Context, update *models.StatusUpdate, caseID primitive.ObjectID, caseVersion int64, caseUpdates map[string]interface{}) error {
	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()
	caseUpdates["updated_at"] = time.Now()

	if r.txEnabled {
		return r.createTransactional(ctx, update, caseID, caseVersion, caseUpdates)
	}
	return r.createCompensated(ctx, update, caseID, caseVersion, caseUpdates)
}

func (r *statusUpdateRepository) createTransactional(ctx context.Context, update *models.StatusUpdate, caseID primitive.ObjectID, caseVersion int64, caseUpdates map[string]interface{}) error {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.InsertOne(sc, update); err != nil {
			return nil, fmt.Errorf("failed to create status update: %w", err)
		}

		if err := r.applyCaseMutation(sc, caseID, caseVersion, caseUpdates); err != nil {
			return nil, err
		}

		return nil, nil
	})

	return err
}

func (r *statusUpdateRepository) createCompensated(ctx context.Context, update *models.StatusUpdate, caseID primitive.ObjectID, caseVersion int64, caseUpdates map[string]interface{}) error {
	if _, err := r.collection.InsertOne(ctx, update); err != nil {
		return fmt.Errorf("failed to create status update: %w", err)
	}

	if err := r.applyCaseMutation(ctx, caseID, caseVersion, caseUpdates); err != nil {
		// The update record must not outlive a failed case mutation.
		r.collection.DeleteOne(ctx, bson.M{"_id": update.ID})
		return err
	}

	return nil
}

func (r *statusUpdateRepository) applyCaseMutation(ctx context.Context, caseID primitive.ObjectID, caseVersion int64, caseUpdates map[string]interface{}) error {
	result, err := r.caseCollection.UpdateOne(
		ctx,
		bson.M{"_id": caseID, "version": caseVersion},
		bson.M{
			"$set": caseUpdates,
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := r.caseCollection.CountDocuments(ctx, bson.M{"_id": caseID})
		if err != nil {
			return fmt.Errorf("failed to check case existence: %w", err)
		}
		if count == 0 {
			return utils.NotFoundError(utils.ErrCaseNotFound)
		}
		return utils.ConflictError(utils.ErrTransitionConflict)
	}

	return nil
}
