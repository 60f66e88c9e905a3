package interfaces

import (
	"context"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CaseRepository interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Case, error)
	GetByCaseNumber(ctx context.Context, caseNumber string) (*models.Case, error)

	// Update applies unguarded field updates. Lifecycle transitions must go
	// through UpdateWithVersion instead.
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// UpdateWithVersion applies updates only if the stored version matches,
	// incrementing it on success. Returns a conflict error when another
	// writer got there first.
	UpdateWithVersion(ctx context.Context, id primitive.ObjectID, version int64, updates map[string]interface{}) error

	// AddAssignedHelper inserts the helper with set semantics so concurrent
	// self-assignment is commutative and idempotent.
	AddAssignedHelper(ctx context.Context, id primitive.ObjectID, helperID primitive.ObjectID, at time.Time) error

	GetByReporter(ctx context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error)
	GetByHelper(ctx context.Context, helperID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error)
	GetByStatus(ctx context.Context, status models.CaseStatus, params *utils.PaginationParams) ([]*models.Case, int64, error)
	GetNearbyOpenCases(ctx context.Context, lat, lng, radiusKM float64) ([]*models.Case, error)

	// ClaimDueReminders selects cases whose reminder is due and flags
	// reminder_sent in the same conditional update, so overlapping sweeps
	// never double-claim a case.
	ClaimDueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Case, error)
}
