// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

// Package similarity implements the pairwise similarity engine for the
// product catalog.
//
// # Architecture
//
// The package has two components:
//
//   - Store: owns the persisted mapping from unordered product pairs to a
//     numeric score. Pairs are canonicalized to (low, high) with low < high
//     before any access, so the symmetric relation is stored exactly once.
//     Pairs with no stored edge read as the configured baseline score.
//   - Engine: ranks all candidates against a focal product and returns the
//     top K, and turns a click event into a coherent set of score
//     adjustments (reward the clicked candidate, penalize the rest).
//
// Two store implementations are provided: MemoryStore for development and
// tests, and SQLStore backed by DuckDB for production.
//
// # Concurrency
//
// Score mutations are atomic per pair: AddDelta is expressed as a single
// conflict-update statement (SQLStore) or applied under the store mutex
// (MemoryStore), so concurrent feedback events touching the same pair never
// lose updates. Ranking reads a snapshot that may be stale by the time the
// caller acts on it; recommendations are advisory, not safety-critical.
//
// Product deletion takes precedence over racing upserts: SQLStore guards
// every write with liveness checks in the same statement, and MemoryStore
// serializes deletion and writes on one mutex, so a delete is never silently
// undone by an upsert that started earlier.
//
// # Scaling
//
// GetAllScores enumerates the full candidate set, so ranking is linear in
// the number of live products. This is a deliberate tradeoff for modest
// catalog sizes; large catalogs would need a secondary top-K index.
//
// # Usage
//
//	store := similarity.NewMemoryStore(cfg.StoreOptions())
//	engine, err := similarity.NewEngine(store, store, cfg, logger)
//
//	recs, err := engine.Recommend(ctx, productID, 3)
//	err = engine.RecordFeedback(ctx, focalID, clickedID, otherIDs)
package similarity
