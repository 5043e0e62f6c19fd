package artisanstats

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"artisan-workers/internal/common/errors"
	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/models"
	"artisan-workers/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func createTestHandler(t *testing.T, geo ranking.DistanceFilter) *Handler {
	cfg := &Config{Timeout: 5 * time.Second, RadiusKm: 50}
	ranker := ranking.NewRanker(ranking.Options{
		RadiusKm: cfg.RadiusKm,
		Geo:      geo,
		Now:      func() time.Time { return testNow },
	})
	return NewHandler(cfg, ranker, logger.NewTestLogger(t))
}

func hidden() *bool {
	f := false
	return &f
}

func fixture() []models.Candidate {
	return []models.Candidate{
		{ID: "1", Profession: "plombier", City: "Lyon", Premium: models.IndefinitePremium()},
		{ID: "2", Profession: "plombier", City: "Lyon", Premium: models.PremiumEndingAt(testNow)},
		{ID: "3", Profession: "électricien", City: "Lyon"},
		{ID: "4", Profession: "plombier", City: "Grenoble"},
		{ID: "5", Profession: "plombier", City: "Lyon", Visible: hidden(), Premium: models.IndefinitePremium()},
	}
}

type brokenGeo struct{}

func (brokenGeo) FilterByDistance(context.Context, []models.Candidate, float64, float64, float64) ([]models.Candidate, error) {
	return nil, stderrors.New("timeout")
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		criteria models.Criteria
		want     models.Stats
		strategy string
	}{
		{
			name:     "no criteria",
			want:     models.Stats{TotalCandidates: 5, FilteredCount: 4, PremiumCount: 1, StandardCount: 3},
			strategy: "random",
		},
		{
			name:     "city and service",
			criteria: models.Criteria{LocationSearch: "Lyon", PrestationSearch: "plomb"},
			want:     models.Stats{TotalCandidates: 5, FilteredCount: 2, PremiumCount: 1, StandardCount: 1},
			strategy: "rating",
		},
		{
			name:     "service only",
			criteria: models.Criteria{SelectedPrestation: "électricien"},
			want:     models.Stats{TotalCandidates: 5, FilteredCount: 1, PremiumCount: 0, StandardCount: 1},
			strategy: "relevance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, nil)

			output, err := h.Execute(context.Background(), &Input{Candidates: fixture(), Criteria: tt.criteria})

			require.NoError(t, err)
			assert.Equal(t, tt.want, output.Stats)
			assert.Equal(t, tt.strategy, output.Strategy)
		})
	}
}

func TestHandler_Execute_GeoFailure(t *testing.T) {
	h := createTestHandler(t, brokenGeo{})

	_, err := h.Execute(context.Background(), &Input{
		Candidates: fixture(),
		Criteria:   models.Criteria{SelectedLocation: &models.LocationPoint{Lat: 45.76, Lng: 4.83}},
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDistanceFilterFailed, errors.AsStandardError(err).Code)
}

func TestOutput_JSONIsFlat(t *testing.T) {
	data, err := json.Marshal(Output{Stats: models.Stats{TotalCandidates: 3}, Strategy: "random"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalCandidates":3,"filteredCount":0,"premiumCount":0,"standardCount":0,"strategy":"random"}`, string(data))
}
