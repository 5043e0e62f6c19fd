package ranking

import (
	"context"
	"strings"

	"artisan-workers/internal/models"
)

// DefaultRadiusKm is the search radius around a resolved location point.
const DefaultRadiusKm = 50.0

// DistanceFilter keeps the candidates within radiusKm of (lat, lng) and
// annotates each survivor with its distance in km.
type DistanceFilter interface {
	FilterByDistance(ctx context.Context, candidates []models.Candidate, lat, lng, radiusKm float64) ([]models.Candidate, error)
}

// ApplyFilters runs the visibility, location and service predicates. The only
// error comes from the distance collaborator and is returned as is.
func ApplyFilters(ctx context.Context, candidates []models.Candidate, criteria models.Criteria, geo DistanceFilter, radiusKm float64) ([]models.Candidate, error) {
	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsVisible() {
			out = append(out, c)
		}
	}

	switch {
	case criteria.SelectedLocation != nil:
		p := criteria.SelectedLocation
		near, err := geo.FilterByDistance(ctx, out, p.Lat, p.Lng, radiusKm)
		if err != nil {
			return nil, err
		}
		out = near
	case criteria.CityTerm() != "":
		out = keep(out, cityMatcher(criteria.CityTerm()))
	}

	if term := criteria.ServiceTerm(); term != "" {
		out = keep(out, func(c models.Candidate) bool { return matchesService(c, term) })
	}

	return out, nil
}

func keep(candidates []models.Candidate, pred func(models.Candidate) bool) []models.Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func cityMatcher(term string) func(models.Candidate) bool {
	return func(c models.Candidate) bool {
		return containsFold(c.City, term)
	}
}

// matchesService checks profession, secondary professions and description.
func matchesService(c models.Candidate, term string) bool {
	return containsFold(c.Profession, term) ||
		anyContainsFold(c.SecondaryProfessions, term) ||
		containsFold(c.Description, term)
}

// containsFold expects term already lower-cased.
func containsFold(s, term string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), term)
}

func anyContainsFold(values []string, term string) bool {
	for _, v := range values {
		if containsFold(v, term) {
			return true
		}
	}
	return false
}
