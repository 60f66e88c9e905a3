package interfaces

import (
	"context"

	"pawrescue/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HelperFilters narrows matcher results. Zero values mean no filtering.
type HelperFilters struct {
	UserType     models.UserType
	Verification models.VerificationStatus
	ActiveOnly   bool
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// GetNearbyHelpers runs the $near proximity query against helper
	// current locations, ascending by distance.
	GetNearbyHelpers(ctx context.Context, lat, lng, radiusKM float64, filters *HelperFilters) ([]*models.User, error)
}
