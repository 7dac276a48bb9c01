// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import "errors"

// Sentinel errors for the similarity engine. All validation happens before
// any mutation, so a returned error never leaves a pair partially updated.
var (
	// ErrInvalidPair indicates a product was paired with itself (a == b).
	// Rejected before any store access; caller bug, non-retryable.
	ErrInvalidPair = errors.New("product cannot be paired with itself")

	// ErrInvalidFeedback indicates a malformed feedback candidate set:
	// the clicked product or the focal product appears among the
	// non-clicked candidates.
	ErrInvalidFeedback = errors.New("invalid feedback candidate set")

	// ErrUnknownProduct indicates an operation referenced a product that is
	// not in the directory's live set. Surfaced rather than silently
	// degraded: acting on a deleted product's id means the client view is
	// stale.
	ErrUnknownProduct = errors.New("unknown product")
)
