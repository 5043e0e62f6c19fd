package queries

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type countingSource struct {
	calls      int
	candidates []models.Candidate
	err        error
}

func (s *countingSource) Name() string { return "fake" }

func (s *countingSource) Load(_ context.Context, limit int) ([]models.Candidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.candidates) {
		return s.candidates[:limit], nil
	}
	return s.candidates, nil
}

func sampleCandidates() []models.Candidate {
	end := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Candidate{
		{ID: "a1", CompanyName: "Plomberie Durand", Profession: "plombier", City: "Lyon",
			Coordinates: &models.GeoPoint{Lat: 45.76, Lng: 4.83}, Premium: models.PremiumEndingAt(end)},
		{ID: "a2", CompanyName: "Elec Martin", Profession: "électricien", City: "Vienne"},
	}
}

func newESClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

// ==========================
// Postgres Tests
// ==========================

func TestPostgresSource_Query(t *testing.T) {
	src := NewPostgresSource(nil, "artisans")

	query, args, err := src.Query(250)

	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Contains(t, query, "FROM artisans WHERE visible IS NOT FALSE ORDER BY id LIMIT 250")
	assert.Contains(t, query, "SELECT id, company_name, first_name")
}

func TestPostgresSource_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	end := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(artisanColumns).
		AddRow("a1", "Plomberie Durand", nil, nil, "plombier", "{chauffagiste,sanitaire}", "Dépannage 7j/7",
			"Lyon", 45.76, 4.83, 4.5, int64(12), true, true, end).
		AddRow("a2", nil, "Jean", "Martin", "électricien", nil, nil,
			"Vienne", nil, nil, nil, nil, nil, true, nil).
		AddRow("a3", "Carrelage Petit", nil, nil, "carreleur", "{}", nil,
			"Bron", 45.73, 4.91, 3.9, int64(4), nil, false, nil)

	mock.ExpectQuery(`SELECT (.+) FROM artisans WHERE visible IS NOT FALSE ORDER BY id LIMIT 100`).
		WillReturnRows(rows)

	src := NewPostgresSource(sqlx.NewDb(db, "sqlmock"), "artisans")
	candidates, err := src.Load(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, candidates, 3)

	first := candidates[0]
	assert.Equal(t, "Plomberie Durand", first.DisplayName())
	assert.Equal(t, []string{"chauffagiste", "sanitaire"}, first.SecondaryProfessions)
	require.NotNil(t, first.Coordinates)
	assert.Equal(t, 45.76, first.Coordinates.Lat)
	assert.Equal(t, 12, first.ReviewCount)
	assert.Equal(t, models.PremiumUntil, first.Premium.Kind)
	assert.True(t, first.Premium.Until.Equal(end))

	second := candidates[1]
	assert.Equal(t, "Jean Martin", second.DisplayName())
	assert.Nil(t, second.Coordinates)
	assert.Nil(t, second.Visible)
	assert.True(t, second.IsVisible())
	assert.Equal(t, models.PremiumIndefinite, second.Premium.Kind)

	assert.Equal(t, models.NotPremium, candidates[2].Premium.Kind)
	assert.Empty(t, candidates[2].SecondaryProfessions)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_LoadError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM artisans`).WillReturnError(stderrors.New("relation does not exist"))

	src := NewPostgresSource(sqlx.NewDb(db, "sqlmock"), "artisans")
	_, err = src.Load(context.Background(), 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

// ==========================
// Elasticsearch Tests
// ==========================

func TestElasticsearchSource_Load(t *testing.T) {
	var body map[string]interface{}
	client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artisans/_search", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)

		_, _ = io.WriteString(w, `{
			"hits": {"hits": [
				{"_id": "a1", "_source": {"companyName": "Plomberie Durand", "profession": "plombier",
					"coordinates": {"lat": 45.76, "lng": 4.83}, "premium": {"active": true}}},
				{"_id": "ignored", "_source": {"id": "a2", "companyName": "Elec Martin", "premium": null}}
			]}
		}`)
	})

	src := NewElasticsearchSource(client, "artisans")
	candidates, err := src.Load(context.Background(), 20)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "a1", candidates[0].ID)
	assert.Equal(t, models.PremiumIndefinite, candidates[0].Premium.Kind)
	assert.Equal(t, "a2", candidates[1].ID)
	assert.Equal(t, models.NotPremium, candidates[1].Premium.Kind)
	assert.Equal(t, float64(20), body["size"])
}

func TestElasticsearchSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"missing index", http.StatusNotFound, ErrIndexNotFound},
		{"server error", http.StatusInternalServerError, ErrQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error": {"type": "index_not_found_exception"}}`)
			})

			_, err := NewElasticsearchSource(client, "artisans").Load(context.Background(), 5)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(7)
	assert.Equal(t, 7, q["size"])
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"must_not":[{"term":{"visible":false}}]`)
}

// ==========================
// Cache Tests
// ==========================

func TestCache_MissThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	src := &countingSource{candidates: sampleCandidates()}
	cache := NewCache(rdb, 5*time.Minute, logger.NewTestLogger(t))

	first, cached, err := cache.Load(context.Background(), src, 10)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, first, 2)

	second, cached, err := cache.Load(context.Background(), src, 10)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, src.calls)

	require.Len(t, second, 2)
	assert.Equal(t, models.PremiumUntil, second[0].Premium.Kind)
	assert.True(t, second[0].Premium.Until.Equal(first[0].Premium.Until))
	assert.Equal(t, 5*time.Minute, mr.TTL(Key("fake", 10)))

	_, cached, err = cache.Load(context.Background(), src, 1)
	require.NoError(t, err)
	assert.False(t, cached, "limit is part of the key")
}

func TestCache_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.SetError("LOADING Redis is loading the dataset in memory")

	src := &countingSource{candidates: sampleCandidates()}
	candidates, cached, err := NewCache(rdb, time.Minute, logger.NewTestLogger(t)).Load(context.Background(), src, 10)

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, candidates, 2)
	assert.Equal(t, 1, src.calls)
}

func TestCache_CorruptEntryIsReplaced(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	src := &countingSource{candidates: sampleCandidates()}
	key := Key("fake", 10)

	data, err := json.Marshal(src.candidates)
	require.NoError(t, err)

	mock.ExpectGet(key).SetVal("not-json")
	mock.ExpectSet(key, data, time.Minute).SetVal("OK")

	candidates, cached, err := NewCache(rdb, time.Minute, logger.NewTestLogger(t)).Load(context.Background(), src, 10)

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, candidates, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_SourceErrorIsReturned(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	src := &countingSource{err: ErrQueryFailed}

	_, _, err := NewCache(rdb, time.Minute, logger.NewTestLogger(t)).Load(context.Background(), src, 10)

	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.False(t, mr.Exists(Key("fake", 10)))
}
