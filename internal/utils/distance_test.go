package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistanceSymmetric(t *testing.T) {
	d1 := CalculateDistance(19.07, 72.8, 19.10, 72.85)
	d2 := CalculateDistance(19.10, 72.85, 19.07, 72.8)
	assert.Equal(t, d1, d2)
}

func TestCalculateDistanceZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, CalculateDistance(19.07, 72.8, 19.07, 72.8))
}

func TestCalculateDistanceKnownPair(t *testing.T) {
	// Mumbai pair, roughly 6.2 km apart.
	d := CalculateDistance(19.07, 72.8, 19.10, 72.85)
	assert.InDelta(t, 6.2, d, 0.1)
}

func TestCalculateDistanceRoundsToOneDecimal(t *testing.T) {
	d := CalculateDistance(19.07, 72.8, 19.10, 72.85)
	assert.InDelta(t, math.Round(d*10), d*10, 1e-9)
}

func TestIsWithinRadius(t *testing.T) {
	assert.True(t, IsWithinRadius(19.07, 72.8, 19.10, 72.85, 10))
	assert.False(t, IsWithinRadius(19.07, 72.8, 19.10, 72.85, 5))
}

func TestIsValidCoordinates(t *testing.T) {
	assert.True(t, IsValidCoordinates(19.07, 72.8))
	assert.True(t, IsValidCoordinates(-90, 180))
	assert.False(t, IsValidCoordinates(90.1, 0))
	assert.False(t, IsValidCoordinates(0, -180.1))
}
