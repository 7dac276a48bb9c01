// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests. It also
// implements Directory, owning the live product set, so a single instance
// can back the engine without a database.
//
// A single mutex serializes writes and deletion, which gives the required
// delete-wins semantics: a write racing a deletion either lands before the
// purge (and is purged) or observes the product as gone and fails.
type MemoryStore struct {
	opts StoreOptions

	mu       sync.RWMutex
	products map[int64]struct{}
	edges    map[Pair]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts StoreOptions) *MemoryStore {
	return &MemoryStore{
		opts:     opts,
		products: make(map[int64]struct{}),
		edges:    make(map[Pair]float64),
	}
}

// AddProduct registers a product in the live set.
func (m *MemoryStore) AddProduct(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id] = struct{}{}
}

// GetScore returns the stored score for the pair, or the baseline if no
// edge exists.
func (m *MemoryStore) GetScore(ctx context.Context, a, b int64) (float64, error) {
	pair, err := NewPair(a, b)
	if err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if score, ok := m.edges[pair]; ok {
		return score, nil
	}
	return m.opts.Baseline, nil
}

// GetAllScores returns every other live product's score against productID,
// baseline-filled for pairs with no stored edge.
func (m *MemoryStore) GetAllScores(ctx context.Context, productID int64) ([]ScoredProduct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scores := make([]ScoredProduct, 0, len(m.products))
	for id := range m.products {
		if id == productID {
			continue
		}
		pair, err := NewPair(productID, id)
		if err != nil {
			return nil, err
		}
		score, ok := m.edges[pair]
		if !ok {
			score = m.opts.Baseline
		}
		scores = append(scores, ScoredProduct{ProductID: id, Score: score})
	}
	return scores, nil
}

// Upsert atomically replaces (creates if absent) the edge's score.
func (m *MemoryStore) Upsert(ctx context.Context, a, b int64, score float64) error {
	pair, err := NewPair(a, b)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireLiveLocked(pair); err != nil {
		return err
	}
	m.edges[pair] = m.opts.clamp(score)
	return nil
}

// AddDelta atomically applies score = clamp(score + delta), creating the
// edge from the baseline if absent.
func (m *MemoryStore) AddDelta(ctx context.Context, a, b int64, delta float64) error {
	pair, err := NewPair(a, b)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireLiveLocked(pair); err != nil {
		return err
	}
	score, ok := m.edges[pair]
	if !ok {
		score = m.opts.Baseline
	}
	m.edges[pair] = m.opts.clamp(score + delta)
	return nil
}

// SeedProduct creates edges between id and every other live product at the
// given score, leaving existing edges untouched.
func (m *MemoryStore) SeedProduct(ctx context.Context, id int64, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownProduct, id)
	}

	score = m.opts.clamp(score)
	for other := range m.products {
		if other == id {
			continue
		}
		pair, err := NewPair(id, other)
		if err != nil {
			return err
		}
		if _, ok := m.edges[pair]; !ok {
			m.edges[pair] = score
		}
	}
	return nil
}

// SeedAll creates edges between every pair of live products at the given
// score, leaving existing edges untouched.
func (m *MemoryStore) SeedAll(ctx context.Context, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	score = m.opts.clamp(score)
	for a := range m.products {
		for b := range m.products {
			if a >= b {
				continue
			}
			pair := Pair{Low: a, High: b}
			if _, ok := m.edges[pair]; !ok {
				m.edges[pair] = score
			}
		}
	}
	return nil
}

// DeleteProduct removes id from the live set and purges every edge
// touching it.
func (m *MemoryStore) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.products, id)
	for pair := range m.edges {
		if pair.Low == id || pair.High == id {
			delete(m.edges, pair)
		}
	}
	return nil
}

// ListLiveProductIDs returns the identifiers of all live products.
func (m *MemoryStore) ListLiveProductIDs(ctx context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	return ids, nil
}

// ProductExists reports whether id is in the live set.
func (m *MemoryStore) ProductExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.products[id]
	return ok, nil
}

// EdgeCount returns the number of stored edges. Used by tests to verify
// uniqueness and cascade invariants.
func (m *MemoryStore) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}

// requireLiveLocked verifies both pair endpoints are live.
// Must be called with mu held.
func (m *MemoryStore) requireLiveLocked(pair Pair) error {
	if _, ok := m.products[pair.Low]; !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownProduct, pair.Low)
	}
	if _, ok := m.products[pair.High]; !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownProduct, pair.High)
	}
	return nil
}
