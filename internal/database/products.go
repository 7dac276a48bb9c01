// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/catalogus/catalogus/internal/metrics"
	"github.com/catalogus/catalogus/internal/models"
)

// CreateProduct inserts a product with its tag associations and returns the
// stored record. Category and tag references are checked inside the
// transaction so a half-created product is never visible.
func (db *DB) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if err := checkReferences(ctx, tx, req.CategoryID, req.TagIDs); err != nil {
		return nil, err
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO products (name, description, category_id) VALUES (?, ?, ?) RETURNING id`,
		req.Name, req.Description, req.CategoryID,
	).Scan(&id)
	if err != nil {
		metrics.RecordDBError("insert", "products")
		return nil, fmt.Errorf("insert product: %w", err)
	}

	if err := replaceTags(ctx, tx, id, req.TagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit product create: %w", err)
	}

	metrics.RecordDBQuery("insert", "products", time.Since(start))
	db.logger.Debug().Int64("product_id", id).Str("name", req.Name).Msg("product created")

	return db.GetProduct(ctx, id)
}

// GetProduct returns a product with its category and tags, or
// ErrProductNotFound.
func (db *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	start := time.Now()

	const query = `
		SELECT p.id, p.name, p.description, p.category_id, c.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = ?`

	var (
		p            models.Product
		categoryName sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID, &categoryName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	if err != nil {
		metrics.RecordDBError("select", "products")
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}
	if p.CategoryID != nil && categoryName.Valid {
		p.Category = &models.Category{ID: *p.CategoryID, Name: categoryName.String}
	}

	tags, err := db.tagsForProducts(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	p.Tags = tags[id]
	if p.Tags == nil {
		p.Tags = []models.Tag{}
	}

	metrics.RecordDBQuery("select", "products", time.Since(start))
	return &p, nil
}

// ListProducts returns products matching the filter, ordered by ID. All
// filter dimensions compose with AND; see models.ProductFilter.
func (db *DB) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]models.Product, error) {
	start := time.Now()

	query, args := buildListQuery(filter)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError("select", "products")
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer closeQuietly(rows)

	products := []models.Product{}
	ids := []int64{}
	for rows.Next() {
		var (
			p            models.Product
			categoryName sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &categoryName); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.CategoryID != nil && categoryName.Valid {
			p.Category = &models.Category{ID: *p.CategoryID, Name: categoryName.String}
		}
		p.Tags = []models.Tag{}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	tagsByProduct, err := db.tagsForProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if tags, ok := tagsByProduct[products[i].ID]; ok {
			products[i].Tags = tags
		}
	}

	metrics.RecordDBQuery("select", "products", time.Since(start))
	return products, nil
}

// UpdateProduct replaces the product's fields and tag associations, then
// returns the stored record.
func (db *DB) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if err := checkReferences(ctx, tx, req.CategoryID, req.TagIDs); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, category_id = ? WHERE id = ?`,
		req.Name, req.Description, req.CategoryID, id)
	if err != nil {
		metrics.RecordDBError("update", "products")
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear product tags: %w", err)
	}
	if err := replaceTags(ctx, tx, id, req.TagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit product update: %w", err)
	}

	metrics.RecordDBQuery("update", "products", time.Since(start))
	return db.GetProduct(ctx, id)
}

// DeleteProduct removes the product and its tag associations, then notifies
// deletion listeners (the similarity engine purges edges there). The
// product row is gone before any listener runs, so writes racing the
// deletion fail their liveness checks rather than resurrecting state.
func (db *DB) DeleteProduct(ctx context.Context, id int64) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = ?`, id); err != nil {
		return fmt.Errorf("delete product tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		metrics.RecordDBError("delete", "products")
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit product delete: %w", err)
	}

	metrics.RecordDBQuery("delete", "products", time.Since(start))
	db.logger.Info().Int64("product_id", id).Msg("product deleted")

	return db.notifyDeletion(ctx, id)
}

// buildListQuery assembles the filtered product listing query. Filters
// compose with AND; the all-of tag filter uses a HAVING count over the
// matched associations.
func buildListQuery(filter *models.ProductFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.CategoryID != nil {
		where = append(where, "p.category_id = ?")
		args = append(args, *filter.CategoryID)
	}

	if len(filter.TagIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.TagIDs)), ", ")
		where = append(where, fmt.Sprintf(`p.id IN (
			SELECT product_id FROM product_tags
			WHERE tag_id IN (%s)
			GROUP BY product_id
			HAVING COUNT(DISTINCT tag_id) = ?)`, placeholders))
		for _, tagID := range filter.TagIDs {
			args = append(args, tagID)
		}
		args = append(args, len(filter.TagIDs))
	}

	// Each search word must appear as a whole word in the description,
	// case-insensitively. QuoteMeta keeps user input literal.
	for _, word := range strings.Fields(filter.Search) {
		where = append(where, `regexp_matches(p.description, ?, 'i')`)
		args = append(args, `\b`+regexp.QuoteMeta(word)+`\b`)
	}

	query := `
		SELECT p.id, p.name, p.description, p.category_id, c.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY p.id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return query, args
}

// tagsForProducts loads tags for a set of products in one query.
func (db *DB) tagsForProducts(ctx context.Context, productIDs []int64) (map[int64][]models.Tag, error) {
	if len(productIDs) == 0 {
		return map[int64][]models.Tag{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(productIDs)), ", ")
	query := fmt.Sprintf(`
		SELECT pt.product_id, t.id, t.name
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id IN (%s)
		ORDER BY pt.product_id, t.id`, placeholders)

	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError("select", "product_tags")
		return nil, fmt.Errorf("query product tags: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64][]models.Tag, len(productIDs))
	for rows.Next() {
		var (
			productID int64
			tag       models.Tag
		)
		if err := rows.Scan(&productID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan product tag: %w", err)
		}
		result[productID] = append(result[productID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product tags: %w", err)
	}
	return result, nil
}

// checkReferences verifies the category and tags exist before a product
// write. Runs inside the write's transaction.
func checkReferences(ctx context.Context, tx *sql.Tx, categoryID *int64, tagIDs []int64) error {
	if categoryID != nil {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE id = ?)`, *categoryID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check category %d: %w", *categoryID, err)
		}
		if !exists {
			return fmt.Errorf("%w: id %d", ErrCategoryNotFound, *categoryID)
		}
	}

	for _, tagID := range tagIDs {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tags WHERE id = ?)`, tagID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check tag %d: %w", tagID, err)
		}
		if !exists {
			return fmt.Errorf("%w: id %d", ErrTagNotFound, tagID)
		}
	}
	return nil
}

// replaceTags inserts the tag associations for a product. Duplicate IDs in
// the request collapse to one association.
func replaceTags(ctx context.Context, tx *sql.Tx, productID int64, tagIDs []int64) error {
	seen := make(map[int64]struct{}, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, dup := seen[tagID]; dup {
			continue
		}
		seen[tagID] = struct{}{}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_tags (product_id, tag_id) VALUES (?, ?)`, productID, tagID)
		if err != nil {
			return fmt.Errorf("associate tag %d: %w", tagID, err)
		}
	}
	return nil
}

// rollbackQuietly rolls back a transaction, ignoring the error returned
// when the transaction was already committed.
func rollbackQuietly(tx *sql.Tx) {
	_ = tx.Rollback()
}
