// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

/*
Package database provides the DuckDB-backed product catalog: schema
management, product CRUD with filtered listings, and the category and tag
taxonomy.

# Architecture

DB wraps a single *sql.DB connection pool over an embedded DuckDB file.
Identifiers come from DuckDB sequences; tag associations live in the
product_tags join table. The similarity store shares the same connection
(see internal/similarity.SQLStore) so its liveness guards can reference the
products table in the same statement as the write.

# Deletion notifications

DB is the product directory of record. Interested components register a
DeletionListener; DeleteProduct removes the product row and its tag
associations, then invokes every listener with the deleted ID. The
similarity engine subscribes to purge edges, which is how the cascade in
the recommendation layer is driven without the catalog importing it.

# Filters

ListProducts supports three composable filters: category, all-of tag sets,
and case-insensitive whole-word description search (regexp_matches with
the 'i' option, the term quoted so user input is matched literally).
*/
package database
