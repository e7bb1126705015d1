// Package geo holds great-circle distance helpers.
package geo

import (
	"math"

	"picky/internal/domain"
)

const EarthRadiusKm = 6371.0

// Distance returns the haversine distance in km between a and b. ok is false
// unless both locations carry a full coordinate pair.
func Distance(a, b domain.Location) (km float64, ok bool) {
	lat1, lon1, ok1 := a.Coords()
	lat2, lon2, ok2 := b.Coords()
	if !ok1 || !ok2 {
		return 0, false
	}
	return Haversine(lat1, lon1, lat2, lon2), true
}

func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	p1, p2 := radians(lat1), radians(lat2)
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(p1)*math.Cos(p2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
