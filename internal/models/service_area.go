package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinServiceAreaRadiusKM = 1.0
	MaxServiceAreaRadiusKM = 100.0
)

// ServiceArea is a helper-declared coverage circle. A helper may own any
// number of areas; each carries its own radius, so index-backed proximity
// lookups against the center are only a coarse prefilter.
type ServiceArea struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	HelperID  primitive.ObjectID `json:"helper_id" bson:"helper_id" validate:"required"`
	Name      string             `json:"name" bson:"name"`
	Center    Location           `json:"center" bson:"center" validate:"required"`
	RadiusKM  float64            `json:"radius_km" bson:"radius_km" validate:"required,min=1,max=100"`
	City      string             `json:"city" bson:"city"`
	State     string             `json:"state" bson:"state"`
	IsActive  bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
