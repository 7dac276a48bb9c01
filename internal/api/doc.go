// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

/*
Package api provides the HTTP surface of Catalogus using the Chi router.

Routes live under /api/v1: product CRUD with filtered listings,
per-product recommendations, feedback ingestion, the category and tag
taxonomy, health probes, and an admin endpoint for bulk similarity
seeding. Prometheus metrics are exposed on /metrics.

Handlers depend on two narrow interfaces, CatalogStore and Recommender,
rather than on the concrete database and engine types, so handler tests
run against in-memory fakes without DuckDB.

Every endpoint responds with the models.APIResponse envelope; domain
errors map to stable error codes (PRODUCT_NOT_FOUND, INVALID_PAIR,
INVALID_FEEDBACK, VALIDATION_ERROR, DATABASE_ERROR).
*/
package api
