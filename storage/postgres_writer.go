package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"property-parser/config"
	"property-parser/models"
)

// PostgresWriter mirrors every crawled page into a listings table. Rows are
// only ever inserted; the same listing seen twice is stored twice, tagged
// with the run that saw it.
type PostgresWriter struct {
	pool  *pgxpool.Pool
	runID string
}

func NewPostgresWriter(ctx context.Context, cfg config.Postgres, runID string) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool, runID: runID}, nil
}

func (w *PostgresWriter) Close() error {
	if w.pool != nil {
		w.pool.Close()
	}
	return nil
}

func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		run_id UUID NOT NULL,
		listing_id TEXT,
		url TEXT,
		address TEXT,
		location TEXT,
		postal_code TEXT,
		company TEXT,
		price TEXT,
		cap_rate TEXT,
		size TEXT,
		images TEXT[],
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_run ON listings(run_id);
	CREATE INDEX IF NOT EXISTS idx_listings_listing_id ON listings(listing_id);
	`

	if _, err := w.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Append inserts one page of records in a single batch. appendMode has no
// meaning for a table.
func (w *PostgresWriter) Append(ctx context.Context, listings []models.ListingRecord, _ bool) error {
	if len(listings) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	insertSQL := `
	INSERT INTO listings (run_id, listing_id, url, address, location, postal_code, company, price, cap_rate, size, images)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	for _, l := range listings {
		batch.Queue(
			insertSQL,
			w.runID,
			strings.TrimSpace(l.ListingID),
			strings.TrimSpace(l.URL),
			l.Address,
			l.Location,
			l.PostalCode,
			l.Company,
			l.Price,
			l.CapRate,
			l.Size,
			l.Images,
		)
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range listings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
	}

	return nil
}
