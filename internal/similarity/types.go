// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import "fmt"

// Pair is a canonical unordered product pair: Low < High always holds.
// Construct via NewPair so the invariant cannot be violated.
type Pair struct {
	// Low is the smaller product identifier.
	Low int64 `json:"low"`

	// High is the larger product identifier.
	High int64 `json:"high"`
}

// NewPair canonicalizes an unordered pair of product identifiers.
// Returns ErrInvalidPair if a == b; a product is never compared to itself.
func NewPair(a, b int64) (Pair, error) {
	if a == b {
		return Pair{}, fmt.Errorf("%w: id %d", ErrInvalidPair, a)
	}
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}, nil
}

// Other returns the pair member that is not id.
// Returns false if id is not part of the pair.
func (p Pair) Other(id int64) (int64, bool) {
	switch id {
	case p.Low:
		return p.High, true
	case p.High:
		return p.Low, true
	default:
		return 0, false
	}
}

// String returns a human-readable representation for logging.
func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.Low, p.High)
}

// Edge is a stored similarity edge: a canonical pair with its score.
type Edge struct {
	Pair

	// Score is the similarity score. Unbounded unless clamping is configured.
	Score float64 `json:"score"`
}

// ScoredProduct is a candidate product with its score against the focal
// product. Returned by Store.GetAllScores and Engine.Recommend.
type ScoredProduct struct {
	// ProductID is the candidate product identifier.
	ProductID int64 `json:"product_id"`

	// Score is the similarity score against the focal product.
	Score float64 `json:"score"`
}
