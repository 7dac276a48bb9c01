// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// SQLStore is the DuckDB-backed Store. It shares the catalog's database
// handle: the product_similarity table it owns references the products
// table for liveness guards and candidate enumeration.
//
// Atomicity: every mutation is a single INSERT ... ON CONFLICT DO UPDATE
// statement, so concurrent deltas on the same pair are serialized by the
// database rather than by a read-modify-write cycle in Go. Every write
// carries EXISTS guards on both endpoints in the same statement, so an
// upsert racing a product deletion cannot resurrect edges (delete wins).
type SQLStore struct {
	conn   *sql.DB
	opts   StoreOptions
	logger zerolog.Logger
}

// NewSQLStore creates the SQL-backed store and ensures its schema.
// The products table must already exist on the same connection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSQLStore(ctx context.Context, conn *sql.DB, opts StoreOptions, logger zerolog.Logger) (*SQLStore, error) {
	s := &SQLStore{
		conn:   conn,
		opts:   opts,
		logger: logger.With().Str("component", "similarity-store").Logger(),
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure similarity schema: %w", err)
	}
	return s, nil
}

// ensureSchema creates the product_similarity table. The (low, high)
// primary key enforces one edge per unordered pair; the CHECK enforces
// canonical form and excludes self-loops.
func (s *SQLStore) ensureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS product_similarity (
			low   BIGINT NOT NULL,
			high  BIGINT NOT NULL,
			score DOUBLE NOT NULL,
			PRIMARY KEY (low, high),
			CHECK (low < high)
		)`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create product_similarity table: %w", err)
	}
	return nil
}

// GetScore returns the stored score for the pair, or the baseline if no
// edge exists.
func (s *SQLStore) GetScore(ctx context.Context, a, b int64) (float64, error) {
	pair, err := NewPair(a, b)
	if err != nil {
		return 0, err
	}

	const query = `SELECT score FROM product_similarity WHERE low = ? AND high = ?`

	var score float64
	err = s.conn.QueryRowContext(ctx, query, pair.Low, pair.High).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return s.opts.Baseline, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query similarity score %s: %w", pair, err)
	}
	return score, nil
}

// GetAllScores returns every other live product's score against productID,
// baseline-filled via COALESCE. A single LEFT JOIN over the products table,
// linear in the number of live products.
func (s *SQLStore) GetAllScores(ctx context.Context, productID int64) ([]ScoredProduct, error) {
	const query = `
		SELECT p.id, COALESCE(sim.score, ?) AS score
		FROM products p
		LEFT JOIN product_similarity sim
			ON sim.low = LEAST(p.id, ?) AND sim.high = GREATEST(p.id, ?)
		WHERE p.id <> ?
		ORDER BY p.id`

	rows, err := s.conn.QueryContext(ctx, query, s.opts.Baseline, productID, productID, productID)
	if err != nil {
		return nil, fmt.Errorf("query candidate scores for product %d: %w", productID, err)
	}
	defer closeQuietly(rows)

	var scores []ScoredProduct
	for rows.Next() {
		var sp ScoredProduct
		if err := rows.Scan(&sp.ProductID, &sp.Score); err != nil {
			return nil, fmt.Errorf("scan candidate score: %w", err)
		}
		scores = append(scores, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate scores: %w", err)
	}
	return scores, nil
}

// Upsert atomically replaces (creates if absent) the edge's score.
func (s *SQLStore) Upsert(ctx context.Context, a, b int64, score float64) error {
	pair, err := NewPair(a, b)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO product_similarity (low, high, score)
		SELECT ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM products WHERE id = ?)
		  AND EXISTS (SELECT 1 FROM products WHERE id = ?)
		ON CONFLICT (low, high) DO UPDATE SET score = excluded.score`

	score = s.opts.clamp(score)
	res, err := s.conn.ExecContext(ctx, query, pair.Low, pair.High, score, pair.Low, pair.High)
	if err != nil {
		return fmt.Errorf("upsert similarity %s: %w", pair, err)
	}
	return s.requireRowWritten(res, pair)
}

// AddDelta atomically applies score = clamp(score + delta) in a single
// conflict-update statement, creating the edge from the baseline if absent.
func (s *SQLStore) AddDelta(ctx context.Context, a, b int64, delta float64) error {
	pair, err := NewPair(a, b)
	if err != nil {
		return err
	}

	// New edges start from clamp(baseline + delta); existing edges are
	// updated in place inside the conflict clause.
	initial := s.opts.clamp(s.opts.Baseline + delta)

	var (
		query string
		args  []any
	)
	if s.opts.ClampEnabled {
		query = `
			INSERT INTO product_similarity (low, high, score)
			SELECT ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM products WHERE id = ?)
			  AND EXISTS (SELECT 1 FROM products WHERE id = ?)
			ON CONFLICT (low, high) DO UPDATE
			SET score = GREATEST(?, LEAST(?, score + ?))`
		args = []any{pair.Low, pair.High, initial, pair.Low, pair.High, s.opts.ClampMin, s.opts.ClampMax, delta}
	} else {
		query = `
			INSERT INTO product_similarity (low, high, score)
			SELECT ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM products WHERE id = ?)
			  AND EXISTS (SELECT 1 FROM products WHERE id = ?)
			ON CONFLICT (low, high) DO UPDATE SET score = score + ?`
		args = []any{pair.Low, pair.High, initial, pair.Low, pair.High, delta}
	}

	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply similarity delta %s: %w", pair, err)
	}
	return s.requireRowWritten(res, pair)
}

// SeedProduct creates edges between id and every other live product at the
// given score, leaving existing edges untouched.
func (s *SQLStore) SeedProduct(ctx context.Context, id int64, score float64) error {
	const query = `
		INSERT INTO product_similarity (low, high, score)
		SELECT LEAST(p.id, ?), GREATEST(p.id, ?), ?
		FROM products p
		WHERE p.id <> ?
		  AND EXISTS (SELECT 1 FROM products WHERE id = ?)
		ON CONFLICT (low, high) DO NOTHING`

	score = s.opts.clamp(score)
	if _, err := s.conn.ExecContext(ctx, query, id, id, score, id, id); err != nil {
		return fmt.Errorf("seed similarity for product %d: %w", id, err)
	}
	return nil
}

// SeedAll creates edges between every pair of live products at the given
// score, leaving existing edges untouched. O(N^2) rows; intended as a
// one-time backfill for an existing catalog.
func (s *SQLStore) SeedAll(ctx context.Context, score float64) error {
	const query = `
		INSERT INTO product_similarity (low, high, score)
		SELECT a.id, b.id, ?
		FROM products a
		JOIN products b ON a.id < b.id
		ON CONFLICT (low, high) DO NOTHING`

	score = s.opts.clamp(score)
	if _, err := s.conn.ExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("seed all similarity edges: %w", err)
	}
	return nil
}

// DeleteProduct removes every edge touching id.
func (s *SQLStore) DeleteProduct(ctx context.Context, id int64) error {
	const query = `DELETE FROM product_similarity WHERE low = ? OR high = ?`

	res, err := s.conn.ExecContext(ctx, query, id, id)
	if err != nil {
		return fmt.Errorf("purge similarity edges for product %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug().Int64("product_id", id).Int64("edges", n).Msg("purged similarity edges")
	}
	return nil
}

// requireRowWritten converts a zero-row write into ErrUnknownProduct: the
// EXISTS guards filtered the insert because an endpoint is no longer live.
func (s *SQLStore) requireRowWritten(res sql.Result, pair Pair) error {
	n, err := res.RowsAffected()
	if err != nil {
		// Driver cannot report affected rows; the statement itself
		// succeeded, so treat the write as applied.
		return nil //nolint:nilerr // see comment above
	}
	if n == 0 {
		return fmt.Errorf("%w: pair %s", ErrUnknownProduct, pair)
	}
	return nil
}

// closeQuietly closes rows and explicitly ignores the error; cleanup is
// best-effort.
func closeQuietly(rows *sql.Rows) {
	_ = rows.Close()
}
