// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package database

import (
	"context"
	"fmt"
)

// DB is the product directory consumed by the similarity engine: it
// answers which products are live. These methods satisfy
// similarity.Directory without the catalog importing that package.

// ListLiveProductIDs returns the IDs of all products, ascending.
func (db *DB) ListLiveProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query product ids: %w", err)
	}
	defer closeQuietly(rows)

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}
	return ids, nil
}

// ProductExists reports whether a product is live.
func (db *DB) ProductExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product %d: %w", id, err)
	}
	return exists, nil
}
