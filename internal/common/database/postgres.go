// internal/common/database/postgres.go
package database

import (
	"context"
	"fmt"
	"time"

	"artisan-workers/internal/common/config"
	"artisan-workers/internal/common/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresClient holds the pool used to read the artisans table.
type PostgresClient struct {
	DB *sqlx.DB
}

// NewPostgres opens the pool lazily: no connection is made until the first
// query or Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping reports DATABASE_CONNECTION_FAILED when the server is unreachable.
func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// CountVisible returns how many rows of table may appear in search results.
func (c *PostgresClient) CountVisible(ctx context.Context, table string) (int, error) {
	query, args, err := sq.Select("COUNT(*)").
		From(table).
		Where("visible IS NOT FALSE").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := c.DB.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.NewDatabaseConnectionFailedError(err)
	}
	return n, nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
