// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import "context"

// Note: this package has no dependencies on other internal packages to
// maintain clean separation. The Directory interface allows integration
// with the database package without creating circular imports.

// Store owns the persisted similarity edge set. It is the sole writer of
// edge storage; the engine only mutates scores through these primitives.
//
// All pair operations canonicalize (a, b) to (low, high) and return
// ErrInvalidPair when a == b. A pair with no stored edge is treated as
// having the configured baseline score, never as an error.
type Store interface {
	// GetScore returns the stored score for the pair, or the baseline if no
	// edge exists.
	GetScore(ctx context.Context, a, b int64) (float64, error)

	// GetAllScores returns every other live product's score against
	// productID, baseline-filled for pairs with no stored edge. Cost is
	// linear in the number of live products.
	GetAllScores(ctx context.Context, productID int64) ([]ScoredProduct, error)

	// Upsert atomically replaces (creates if absent) the edge's score.
	// Linearizable with respect to other Upsert/AddDelta/GetScore calls on
	// the same pair.
	Upsert(ctx context.Context, a, b int64, score float64) error

	// AddDelta atomically applies score = clamp(score + delta), creating
	// the edge from the baseline if absent. This is the primitive feedback
	// updates use so concurrent deltas on the same pair are never lost.
	AddDelta(ctx context.Context, a, b int64, delta float64) error

	// SeedProduct creates edges between id and every other live product at
	// the given score, leaving existing edges untouched.
	SeedProduct(ctx context.Context, id int64, score float64) error

	// SeedAll creates edges between every pair of live products at the
	// given score, leaving existing edges untouched. Used to backfill
	// similarity data for an existing catalog.
	SeedAll(ctx context.Context, score float64) error

	// DeleteProduct removes every edge touching id. Triggered by the
	// product directory's deletion notification; deletion takes precedence
	// over racing upserts.
	DeleteProduct(ctx context.Context, id int64) error
}

// Directory is the external product directory the engine consults for the
// live product set. Implemented by the database layer in production and by
// MemoryStore in tests.
type Directory interface {
	// ListLiveProductIDs returns the identifiers of all live products.
	ListLiveProductIDs(ctx context.Context) ([]int64, error)

	// ProductExists reports whether id is in the live set.
	ProductExists(ctx context.Context, id int64) (bool, error)
}

// StoreOptions configures score semantics shared by all store
// implementations.
type StoreOptions struct {
	// Baseline is the implicit score for absent edges.
	Baseline float64

	// ClampEnabled bounds stored scores to [ClampMin, ClampMax].
	ClampEnabled bool
	ClampMin     float64
	ClampMax     float64
}

// clamp applies the configured bounds to a score.
func (o StoreOptions) clamp(score float64) float64 {
	if !o.ClampEnabled {
		return score
	}
	if score < o.ClampMin {
		return o.ClampMin
	}
	if score > o.ClampMax {
		return o.ClampMax
	}
	return score
}
