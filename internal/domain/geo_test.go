package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(f float64) *float64 { return &f }

func TestDistanceKm(t *testing.T) {
	// Sydney CBD to Melbourne CBD is roughly 713 km great-circle
	d := DistanceKm(-33.8688, 151.2093, -37.8136, 144.9631)
	assert.InDelta(t, 713, d, 10)

	assert.Zero(t, DistanceKm(-33.8688, 151.2093, -33.8688, 151.2093))
}

func TestWithinDistance(t *testing.T) {
	sydney := Post{Latitude: fp(-33.8688), Longitude: fp(151.2093)}
	melbourne := Post{Latitude: fp(-37.8136), Longitude: fp(144.9631)}
	nowhere := Post{}

	assert.True(t, WithinDistance(sydney, -33.8688, 151.2093, 1))
	assert.False(t, WithinDistance(melbourne, -33.8688, 151.2093, 50))
	assert.True(t, WithinDistance(melbourne, -33.8688, 151.2093, 800))

	// posts without coordinates never match a radius filter
	assert.False(t, WithinDistance(nowhere, -33.8688, 151.2093, 1e6))
}
