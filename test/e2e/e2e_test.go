// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisan-workers/internal/common/config"
	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/ranking"

	artisanstats "artisan-workers/internal/workers/artisan/artisan-stats"
	parseartisancriteria "artisan-workers/internal/workers/artisan/parse-artisan-criteria"
	queryartisans "artisan-workers/internal/workers/artisan/query-artisans"
	"artisan-workers/internal/workers/artisan/query-artisans/queries"
	rankartisans "artisan-workers/internal/workers/artisan/rank-artisans"
)

// ==========================
// Test Helper Functions
// ==========================

func testConfig() *config.Config {
	return &config.Config{
		Ranking: config.RankingConfig{
			RadiusKm:        50,
			FeaturedPremium: 2,
			DefaultPageSize: 3,
			MaxPageSize:     20,
			PaginationMode:  "full",
			SlowThresholdMs: 500,
		},
		Source: config.SourceConfig{
			Backend:  config.BackendPostgres,
			Table:    "artisans",
			Index:    "artisans",
			Limit:    100,
			CacheTTL: 60,
		},
		Services: []config.ServiceEntry{
			{Name: "plombier", Aliases: []string{"plomberie", "plumber"}},
		},
	}
}

var columns = []string{
	"id", "company_name", "first_name", "last_name", "profession",
	"secondary_professions", "description", "city", "lat", "lng",
	"average_rating", "review_count", "visible", "premium_active", "premium_end_date",
}

func lyonRows() *sqlmock.Rows {
	future := time.Now().Add(30 * 24 * time.Hour).UTC()
	past := time.Now().Add(-24 * time.Hour).UTC()
	return sqlmock.NewRows(columns).
		AddRow("p1", "Durand Plomberie", nil, nil, "plombier", "{}", nil, "Lyon", 45.760, 4.840, 4.1, int64(20), true, true, nil).
		AddRow("p2", "Bron Sanitaire", nil, nil, "plombier", "{}", nil, "Bron", 45.738, 4.913, 4.9, int64(8), nil, true, future).
		AddRow("p3", "Caluire Eau", nil, nil, "plombier", "{}", nil, "Caluire", 45.795, 4.846, 4.4, int64(3), true, true, future).
		AddRow("s1", "Villeurbanne Dépannage", nil, nil, "plombier", "{}", nil, "Villeurbanne", 45.772, 4.890, 4.0, int64(2), true, false, nil).
		AddRow("s2", "Vienne Chauffage", nil, nil, "chauffagiste", "{plombier}", nil, "Vienne", 45.526, 4.874, 4.8, int64(11), true, false, nil).
		AddRow("s3", nil, "Paul", "Girard", "plombier", "{}", nil, "Lyon", 45.765, 4.836, 3.5, int64(1), true, true, past).
		AddRow("s4", "Paris Plomberie", nil, nil, "plombier", "{}", nil, "Paris", 48.857, 2.352, 5.0, int64(99), true, false, nil).
		AddRow("e1", "Lyon Électricité", nil, nil, "électricien", "{}", "Tableaux et dépannage", "Lyon", 45.761, 4.835, 4.7, int64(5), true, false, nil)
}

// pass simulates the engine: the output of one job becomes the process
// variables read by the next.
func pass(t *testing.T, out interface{}, vars map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(out)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	for k, v := range m {
		vars[k] = v
	}
}

func decode(t *testing.T, vars map[string]interface{}, into interface{}) {
	t.Helper()
	data, err := json.Marshal(vars)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, into))
}

type pipeline struct {
	parse *parseartisancriteria.Handler
	query *queryartisans.Handler
	rank  *rankartisans.Handler
	stats *artisanstats.Handler
}

func newPipeline(t *testing.T, db *sqlx.DB, rdb *redis.Client) *pipeline {
	cfg := testConfig()
	log := logger.NewTestLogger(t)

	rankCfg, err := rankartisans.LoadConfig(cfg)
	require.NoError(t, err)
	ranker := ranking.NewRanker(rankCfg.RankerOptions())

	var cache *queries.Cache
	if rdb != nil {
		cache = queries.NewCache(rdb, cfg.Source.CacheTTLDuration(), log)
	}

	return &pipeline{
		parse: parseartisancriteria.NewHandler(parseartisancriteria.LoadConfig(cfg), log),
		query: queryartisans.NewHandler(queryartisans.LoadConfig(cfg), queries.NewPostgresSource(db, cfg.Source.Table), cache, log),
		rank:  rankartisans.NewHandler(rankCfg, ranker, nil, log),
		stats: artisanstats.NewHandler(artisanstats.LoadConfig(cfg), ranker, log),
	}
}

// run executes the four jobs in process order and returns the final
// variables along with the stats job result.
func (p *pipeline) run(t *testing.T, raw map[string]interface{}) (map[string]interface{}, *artisanstats.Output) {
	ctx := context.Background()
	vars := map[string]interface{}{"rawCriteria": raw}

	var parseIn parseartisancriteria.Input
	decode(t, vars, &parseIn)
	parsed, err := p.parse.Execute(ctx, &parseIn)
	require.NoError(t, err)
	pass(t, parsed, vars)

	var queryIn queryartisans.Input
	decode(t, vars, &queryIn)
	loaded, err := p.query.Execute(ctx, &queryIn)
	require.NoError(t, err)
	pass(t, loaded, vars)

	var statsIn artisanstats.Input
	decode(t, vars, &statsIn)
	stats, err := p.stats.Execute(ctx, &statsIn)
	require.NoError(t, err)

	var rankIn rankartisans.Input
	decode(t, vars, &rankIn)
	ranked, err := p.rank.Execute(ctx, &rankIn)
	require.NoError(t, err)
	pass(t, ranked, vars)

	return vars, stats
}

func artisanIDs(t *testing.T, vars map[string]interface{}) []string {
	t.Helper()
	var out rankartisans.Output
	decode(t, vars, &out)
	ids := make([]string, len(out.Artisans))
	for i, a := range out.Artisans {
		ids[i] = a.ID
	}
	return ids
}

// ==========================
// Pipeline Tests
// ==========================

func TestPipeline_LyonPlumbers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`SELECT (.+) FROM artisans WHERE visible IS NOT FALSE ORDER BY id LIMIT 100`).
		WillReturnRows(lyonRows())

	p := newPipeline(t, sqlx.NewDb(db, "sqlmock"), nil)

	vars, stats := p.run(t, map[string]interface{}{
		"selectedLocation": map[string]interface{}{"name": "Lyon", "lat": 45.764, "lng": 4.8357},
		"prestationSearch": "Plumber",
		"pageSize":         float64(4),
		"seed":             float64(12),
	})

	var out rankartisans.Output
	decode(t, vars, &out)

	// p1 p2 p3 are premium, s1 s2 s3 standard; Paris is out of range and
	// e1 does not offer the service.
	assert.Equal(t, 6, out.TotalCount)
	assert.Equal(t, 2, out.TotalPages)
	assert.Equal(t, "distance", out.Strategy)
	assert.True(t, out.HasRandomPremium)

	ids := artisanIDs(t, vars)
	require.Len(t, ids, 4)
	for _, id := range ids[:3] {
		assert.Contains(t, []string{"p1", "p2", "p3"}, id, "premium artisans lead the page")
	}
	assert.Equal(t, "s3", ids[3], "closest standard artisan follows the premium tier")

	assert.Equal(t, 8, stats.TotalCandidates)
	assert.Equal(t, 6, stats.FilteredCount)
	assert.Equal(t, 3, stats.PremiumCount)
	assert.Equal(t, 3, stats.StandardCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPipeline_SeededSessionPages(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	// The second page is served from the candidate cache.
	mock.ExpectQuery(`SELECT (.+) FROM artisans`).WillReturnRows(lyonRows())

	p := newPipeline(t, sqlx.NewDb(db, "sqlmock"), rdb)

	seen := map[string]int{}
	for page := 1; page <= 3; page++ {
		vars, _ := p.run(t, map[string]interface{}{
			"page": float64(page),
			"seed": float64(99),
		})
		for _, id := range artisanIDs(t, vars) {
			seen[id]++
		}
		if page > 1 {
			assert.Equal(t, true, vars["cached"])
		}
	}

	assert.Len(t, seen, 8, "every visible artisan appears once across the session")
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_RankArtisans(b *testing.B) {
	cfg := testConfig()
	rankCfg, err := rankartisans.LoadConfig(cfg)
	require.NoError(b, err)
	h := rankartisans.NewHandler(rankCfg, ranking.NewRanker(rankCfg.RankerOptions()), nil, logger.NewNoOpLogger())

	input := &rankartisans.Input{}
	decodeBench(b, benchmarkCandidates(2000), &input.Candidates)
	input.Criteria.LocationSearch = "lyon"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Execute(context.Background(), input); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkCandidates(n int) []map[string]interface{} {
	out := make([]map[string]interface{}, n)
	for i := range out {
		c := map[string]interface{}{
			"id":            fmt.Sprintf("art-%d", i),
			"profession":    "plombier",
			"city":          []string{"Lyon", "Villeurbanne", "Vienne"}[i%3],
			"averageRating": float64(i%50) / 10,
		}
		if i%7 == 0 {
			c["premium"] = map[string]interface{}{"active": true}
		}
		out[i] = c
	}
	return out
}

func decodeBench(b *testing.B, in, out interface{}) {
	data, err := json.Marshal(in)
	require.NoError(b, err)
	require.NoError(b, json.Unmarshal(data, out))
}
