package models

import (
	"time"
)

// Location is stored as a GeoJSON Point so MongoDB 2dsphere indexes can
// serve proximity queries against it. Coordinates are [longitude, latitude].
type Location struct {
	Type          string    `json:"type" bson:"type" default:"Point"`
	Coordinates   []float64 `json:"coordinates" bson:"coordinates" validate:"required,len=2"`
	Address       string    `json:"address" bson:"address"`
	City          string    `json:"city" bson:"city"`
	State         string    `json:"state" bson:"state"`
	Landmark      string    `json:"landmark" bson:"landmark"`
	IsApproximate bool      `json:"is_approximate" bson:"is_approximate"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
}

func NewLocation(lat, lng float64) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{lng, lat},
	}
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) >= 2 {
		return l.Coordinates[1]
	}
	return 0
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) >= 1 {
		return l.Coordinates[0]
	}
	return 0
}
