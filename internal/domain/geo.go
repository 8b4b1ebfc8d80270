package domain

import "math"

const earthRadiusKm = 6371

// DistanceKm is the great-circle distance between two coordinates
// (Haversine). Good enough for radius filtering of listings; we do not
// pretend to be PostGIS.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithinDistance reports whether a post lies within maxKm of the given
// point. Posts without coordinates never match.
func WithinDistance(p Post, lat, lon, maxKm float64) bool {
	if p.Latitude == nil || p.Longitude == nil {
		return false
	}
	return DistanceKm(lat, lon, *p.Latitude, *p.Longitude) <= maxKm
}
