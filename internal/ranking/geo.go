package ranking

import (
	"context"
	"math"

	"artisan-workers/internal/models"
)

const earthRadiusKm = 6371.0

// HaversineFilter is the in-process DistanceFilter. Candidates without
// coordinates cannot be placed and are dropped.
type HaversineFilter struct{}

func (HaversineFilter) FilterByDistance(_ context.Context, candidates []models.Candidate, lat, lng, radiusKm float64) ([]models.Candidate, error) {
	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Coordinates == nil {
			continue
		}
		d := Haversine(lat, lng, c.Coordinates.Lat, c.Coordinates.Lng)
		if d <= radiusKm {
			out = append(out, c.WithDistance(d))
		}
	}
	return out, nil
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
