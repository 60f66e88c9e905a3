package interfaces

import (
	"context"

	"pawrescue/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ServiceAreaRepository interface {
	Create(ctx context.Context, area *models.ServiceArea) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceArea, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	GetByHelper(ctx context.Context, helperID primitive.ObjectID) ([]*models.ServiceArea, error)

	// GetNearCenter is the coarse index-backed prefilter for coverage
	// queries: active areas whose center lies within maxDistanceKM of the
	// point. Callers must still test each candidate against its own radius.
	GetNearCenter(ctx context.Context, lat, lng, maxDistanceKM float64) ([]*models.ServiceArea, error)
}
