package ranking

import (
	"context"
	"time"

	"artisan-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	lyon         = models.GeoPoint{Lat: 45.7640, Lng: 4.8357}
	villeurbanne = models.GeoPoint{Lat: 45.7719, Lng: 4.8902}
	vienne       = models.GeoPoint{Lat: 45.5255, Lng: 4.8743}
	grenoble     = models.GeoPoint{Lat: 45.1885, Lng: 5.7245}
	paris        = models.GeoPoint{Lat: 48.8566, Lng: 2.3522}
)

type candidateOpt func(*models.Candidate)

func newCandidate(id string, opts ...candidateOpt) models.Candidate {
	c := models.Candidate{ID: id, CompanyName: "Entreprise " + id}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func withProfession(p string) candidateOpt {
	return func(c *models.Candidate) { c.Profession = p }
}

func withSecondary(p ...string) candidateOpt {
	return func(c *models.Candidate) { c.SecondaryProfessions = p }
}

func withDescription(d string) candidateOpt {
	return func(c *models.Candidate) { c.Description = d }
}

func withCity(city string, at models.GeoPoint) candidateOpt {
	return func(c *models.Candidate) {
		c.City = city
		p := at
		c.Coordinates = &p
	}
}

func withRating(avg float64, reviews int) candidateOpt {
	return func(c *models.Candidate) {
		c.AverageRating = avg
		c.ReviewCount = reviews
	}
}

func withVisible(v bool) candidateOpt {
	return func(c *models.Candidate) { c.Visible = &v }
}

func withPremium(p models.PremiumStatus) candidateOpt {
	return func(c *models.Candidate) { c.Premium = p }
}

func withDistance(km float64) candidateOpt {
	return func(c *models.Candidate) { c.Distance = &km }
}

// scriptedSource replays fixed draws. It panics when a draw is out of range.
type scriptedSource struct {
	draws []int
	pos   int
}

func (s *scriptedSource) IntN(n int) int {
	v := s.draws[s.pos%len(s.draws)]
	s.pos++
	if v >= n {
		panic("scripted draw out of range")
	}
	return v
}

type failingGeo struct{ err error }

func (f failingGeo) FilterByDistance(context.Context, []models.Candidate, float64, float64, float64) ([]models.Candidate, error) {
	return nil, f.err
}

func ids(candidates []models.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.ID
	}
	return out
}

func newTestRanker(opts Options) *Ranker {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewRanker(opts)
}
