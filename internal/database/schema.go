// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package database

import (
	"context"
	"fmt"
)

// catalogSchema holds the DDL for the catalog tables. Identifiers come from
// sequences because DuckDB has no auto-increment column type.
//
// No FOREIGN KEY constraints: DuckDB executes UPDATE as delete+insert, which
// rejects updates to any row referenced by a foreign key. Referential
// integrity is enforced in the data access methods instead (category and tag
// existence checks, tag associations removed inside the deletion
// transaction). The product_similarity table is owned and created by the
// similarity store on the same connection.
var catalogSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_categories START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_tags START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_products START 1`,

	`CREATE TABLE IF NOT EXISTS categories (
		id   BIGINT PRIMARY KEY DEFAULT nextval('seq_categories'),
		name VARCHAR NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id   BIGINT PRIMARY KEY DEFAULT nextval('seq_tags'),
		name VARCHAR NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id          BIGINT PRIMARY KEY DEFAULT nextval('seq_products'),
		name        VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		category_id BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS product_tags (
		product_id BIGINT NOT NULL,
		tag_id     BIGINT NOT NULL,
		PRIMARY KEY (product_id, tag_id)
	)`,
}

// initialize creates the catalog schema if it does not exist.
func (db *DB) initialize(ctx context.Context) error {
	for _, stmt := range catalogSchema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}
