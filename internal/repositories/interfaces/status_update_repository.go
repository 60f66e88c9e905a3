package interfaces

import (
	"context"

	"pawrescue/internal/models"
	"pawrescue/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StatusUpdateRepository interface {
	Create(ctx context.Context, update *models.StatusUpdate) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.StatusUpdate, error)
	GetByCase(ctx context.Context, caseID primitive.ObjectID, params *utils.PaginationParams) ([]*models.StatusUpdate, int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error

	// CreateWithCaseMutation persists the update and applies the
	// version-guarded case mutation as one unit: a transaction where the
	// deployment supports it, otherwise sequential writes with a
	// compensating delete of the update record.
	CreateWithCaseMutation(ctx context.Context, update *models.StatusUpdate, caseID primitive.ObjectID, caseVersion int64, caseUpdates map[string]interface{}) error
}
