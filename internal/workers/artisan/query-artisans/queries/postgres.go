package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"artisan-workers/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var artisanColumns = []string{
	"id", "company_name", "first_name", "last_name", "profession",
	"secondary_professions", "description", "city", "lat", "lng",
	"average_rating", "review_count", "visible", "premium_active", "premium_end_date",
}

// PostgresSource reads the artisans read model.
type PostgresSource struct {
	db    *sqlx.DB
	table string
}

func NewPostgresSource(db *sqlx.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) Name() string { return "postgres" }

// artisanRow is the database model of one artisan.
type artisanRow struct {
	ID                   string          `db:"id"`
	CompanyName          sql.NullString  `db:"company_name"`
	FirstName            sql.NullString  `db:"first_name"`
	LastName             sql.NullString  `db:"last_name"`
	Profession           sql.NullString  `db:"profession"`
	SecondaryProfessions pq.StringArray  `db:"secondary_professions"`
	Description          sql.NullString  `db:"description"`
	City                 sql.NullString  `db:"city"`
	Lat                  sql.NullFloat64 `db:"lat"`
	Lng                  sql.NullFloat64 `db:"lng"`
	AverageRating        sql.NullFloat64 `db:"average_rating"`
	ReviewCount          sql.NullInt64   `db:"review_count"`
	Visible              sql.NullBool    `db:"visible"`
	PremiumActive        sql.NullBool    `db:"premium_active"`
	PremiumEndDate       sql.NullTime    `db:"premium_end_date"`
}

func (r *artisanRow) toCandidate() models.Candidate {
	c := models.Candidate{
		ID:                   r.ID,
		CompanyName:          r.CompanyName.String,
		FirstName:            r.FirstName.String,
		LastName:             r.LastName.String,
		Profession:           r.Profession.String,
		SecondaryProfessions: []string(r.SecondaryProfessions),
		Description:          r.Description.String,
		City:                 r.City.String,
		AverageRating:        r.AverageRating.Float64,
		ReviewCount:          int(r.ReviewCount.Int64),
	}
	if r.Lat.Valid && r.Lng.Valid {
		c.Coordinates = &models.GeoPoint{Lat: r.Lat.Float64, Lng: r.Lng.Float64}
	}
	if r.Visible.Valid {
		visible := r.Visible.Bool
		c.Visible = &visible
	}

	var end *time.Time
	if r.PremiumEndDate.Valid {
		end = &r.PremiumEndDate.Time
	}
	c.Premium = models.PremiumFromBlock(r.PremiumActive.Bool, end)
	return c
}

// Query builds the candidate select. Rows explicitly flagged invisible are
// skipped; a NULL flag counts as visible.
func (s *PostgresSource) Query(limit int) (string, []interface{}, error) {
	return sq.Select(artisanColumns...).
		From(s.table).
		Where("visible IS NOT FALSE").
		OrderBy("id").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (s *PostgresSource) Load(ctx context.Context, limit int) ([]models.Candidate, error) {
	query, args, err := s.Query(limit)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []artisanRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	candidates := make([]models.Candidate, 0, len(rows))
	for i := range rows {
		candidates = append(candidates, rows[i].toCandidate())
	}
	return candidates, nil
}
