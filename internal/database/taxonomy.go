// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/catalogus/catalogus/internal/metrics"
	"github.com/catalogus/catalogus/internal/models"
)

// ListCategories returns all categories ordered by ID.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		metrics.RecordDBError("select", "categories")
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer closeQuietly(rows)

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	metrics.RecordDBQuery("select", "categories", time.Since(start))
	return categories, nil
}

// ListTags returns all tags ordered by ID.
func (db *DB) ListTags(ctx context.Context) ([]models.Tag, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		metrics.RecordDBError("select", "tags")
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer closeQuietly(rows)

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	metrics.RecordDBQuery("select", "tags", time.Since(start))
	return tags, nil
}

// CreateCategory inserts a category and returns it. Names are unique;
// inserting an existing name fails with the database's constraint error.
func (db *DB) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES (?) RETURNING id, name`, name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		metrics.RecordDBError("insert", "categories")
		return nil, fmt.Errorf("insert category %q: %w", name, err)
	}
	return &c, nil
}

// CreateTag inserts a tag and returns it.
func (db *DB) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	var t models.Tag
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES (?) RETURNING id, name`, name,
	).Scan(&t.ID, &t.Name)
	if err != nil {
		metrics.RecordDBError("insert", "tags")
		return nil, fmt.Errorf("insert tag %q: %w", name, err)
	}
	return &t, nil
}
