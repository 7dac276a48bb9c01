// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Engine turns raw pair scores into ranked recommendations and turns click
// events into coherent sets of score adjustments. It is stateless between
// calls: all persistent state lives in the Store. Safe for concurrent use.
type Engine struct {
	config    *Config
	store     Store
	directory Directory
	logger    zerolog.Logger
}

// NewEngine creates a recommendation engine over the given store and
// product directory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store Store, directory Directory, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if directory == nil {
		return nil, fmt.Errorf("directory must not be nil")
	}

	return &Engine{
		config:    cfg,
		store:     store,
		directory: directory,
		logger:    logger.With().Str("component", "similarity-engine").Logger(),
	}, nil
}

// Recommend returns the top-k products ranked by similarity against the
// focal product, sorted by descending score with ties broken by ascending
// product identifier so results are reproducible for identical inputs.
//
// k <= 0 uses the configured default (3); k is capped at the configured
// maximum. The result holds min(k, candidate count) entries; fewer
// candidates than k is not an error.
func (e *Engine) Recommend(ctx context.Context, productID int64, k int) ([]ScoredProduct, error) {
	if err := e.requireLive(ctx, productID); err != nil {
		return nil, err
	}

	if k <= 0 {
		k = e.config.DefaultK
	}
	if k > e.config.MaxK {
		k = e.config.MaxK
	}

	// Canonicalization guarantees no self-pair, so the focal product is
	// excluded by construction. The snapshot may be stale with respect to
	// concurrent writers; recommendations are best-effort freshness.
	candidates, err := e.store.GetAllScores(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get candidate scores: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ProductID < candidates[j].ProductID
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	e.logger.Debug().
		Int64("product_id", productID).
		Int("k", k).
		Int("returned", len(candidates)).
		Msg("recommendation complete")

	return candidates, nil
}

// RecordFeedback applies a click event: the clicked candidate's score
// against the focal product is raised by the configured increment, every
// other shown candidate's score is lowered by the configured decrement.
//
// Validation is completed before any mutation, so a rejected call leaves no
// partial state. Each pair's delta is independently atomic; all deltas are
// applied before the call returns. The caller re-queries if it wants
// updated rankings; no fresh Recommend is triggered here.
func (e *Engine) RecordFeedback(ctx context.Context, focalID, clickedID int64, otherIDs []int64) error {
	others, err := e.validateFeedback(ctx, focalID, clickedID, otherIDs)
	if err != nil {
		return err
	}

	if err := e.store.AddDelta(ctx, focalID, clickedID, e.config.Increment); err != nil {
		return fmt.Errorf("reward clicked candidate %d: %w", clickedID, err)
	}
	for _, id := range others {
		if err := e.store.AddDelta(ctx, focalID, id, -e.config.Decrement); err != nil {
			return fmt.Errorf("penalize candidate %d: %w", id, err)
		}
	}

	e.logger.Debug().
		Int64("focal_id", focalID).
		Int64("clicked_id", clickedID).
		Int("penalized", len(others)).
		Msg("feedback applied")

	return nil
}

// SeedProduct seeds edges between a newly created product and every
// existing product at the configured seed score. No-op unless seeding is
// enabled in the configuration.
func (e *Engine) SeedProduct(ctx context.Context, productID int64) error {
	if !e.config.SeedOnCreate {
		return nil
	}
	if err := e.store.SeedProduct(ctx, productID, e.config.SeedScore); err != nil {
		return fmt.Errorf("seed product %d: %w", productID, err)
	}
	return nil
}

// SeedAll backfills edges between every pair of live products at the
// configured seed score, leaving existing edges untouched.
func (e *Engine) SeedAll(ctx context.Context) error {
	return e.SeedAllAt(ctx, e.config.SeedScore)
}

// SeedAllAt is SeedAll with an explicit score, for callers overriding the
// configured default.
func (e *Engine) SeedAllAt(ctx context.Context, score float64) error {
	if err := e.store.SeedAll(ctx, score); err != nil {
		return fmt.Errorf("seed all products: %w", err)
	}
	e.logger.Info().Float64("score", score).Msg("bulk similarity seed complete")
	return nil
}

// OnProductDeleted is the deletion notification hook: it purges every edge
// touching the deleted product. Wired to the product directory's deletion
// listeners; never invoked on the store's own initiative.
func (e *Engine) OnProductDeleted(ctx context.Context, productID int64) error {
	if err := e.store.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("purge edges for product %d: %w", productID, err)
	}
	return nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// validateFeedback checks the full candidate set before any mutation and
// returns the deduplicated non-clicked candidates.
func (e *Engine) validateFeedback(ctx context.Context, focalID, clickedID int64, otherIDs []int64) ([]int64, error) {
	if focalID == clickedID {
		return nil, fmt.Errorf("%w: id %d", ErrInvalidPair, focalID)
	}

	seen := make(map[int64]struct{}, len(otherIDs))
	others := make([]int64, 0, len(otherIDs))
	for _, id := range otherIDs {
		if id == clickedID {
			return nil, fmt.Errorf("%w: clicked product %d among non-clicked candidates", ErrInvalidFeedback, id)
		}
		if id == focalID {
			return nil, fmt.Errorf("%w: focal product %d among candidates", ErrInvalidFeedback, id)
		}
		if _, dup := seen[id]; dup {
			continue // duplicates ignored
		}
		seen[id] = struct{}{}
		others = append(others, id)
	}

	if err := e.requireLive(ctx, focalID); err != nil {
		return nil, err
	}
	if err := e.requireLive(ctx, clickedID); err != nil {
		return nil, err
	}
	for _, id := range others {
		if err := e.requireLive(ctx, id); err != nil {
			return nil, err
		}
	}

	return others, nil
}

// requireLive verifies the product is in the directory's live set.
func (e *Engine) requireLive(ctx context.Context, id int64) error {
	ok, err := e.directory.ProductExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check product %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownProduct, id)
	}
	return nil
}
