package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpdateCondition string

const (
	UpdateConditionImproving     UpdateCondition = "improving"
	UpdateConditionStable        UpdateCondition = "stable"
	UpdateConditionDeteriorating UpdateCondition = "deteriorating"
	UpdateConditionCritical      UpdateCondition = "critical"
	UpdateConditionRecovered     UpdateCondition = "recovered"
)

const (
	StatusUpdateMinDescription = 50
	StatusUpdateMaxDescription = 2000
	StatusUpdateMinPhotos      = 2
)

// StatusUpdate is an append-only, photo-evidenced progress report bound to
// exactly one case. ReadBy is the only field ever mutated after creation.
type StatusUpdate struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	CaseID         primitive.ObjectID   `json:"case_id" bson:"case_id" validate:"required"`
	AuthorID       primitive.ObjectID   `json:"author_id" bson:"author_id" validate:"required"`
	PreviousStatus CaseStatus           `json:"previous_status" bson:"previous_status"`
	NewStatus      CaseStatus           `json:"new_status" bson:"new_status"`
	Condition      UpdateCondition      `json:"condition" bson:"condition" validate:"required"`
	Description    string               `json:"description" bson:"description" validate:"required,min=50,max=2000"`
	PhotoURLs      []string             `json:"photo_urls" bson:"photo_urls" validate:"required,min=2"`
	Treatment      string               `json:"treatment" bson:"treatment"`
	NextSteps      string               `json:"next_steps" bson:"next_steps"`
	Location       *Location            `json:"location" bson:"location"`
	IsSystemEntry  bool                 `json:"is_system_entry" bson:"is_system_entry"`
	ReadBy         []primitive.ObjectID `json:"read_by" bson:"read_by"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
}

func ValidUpdateCondition(condition UpdateCondition) bool {
	switch condition {
	case UpdateConditionImproving, UpdateConditionStable, UpdateConditionDeteriorating,
		UpdateConditionCritical, UpdateConditionRecovered:
		return true
	}
	return false
}
