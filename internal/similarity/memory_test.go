// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newTestStore(t *testing.T, opts StoreOptions, ids ...int64) *MemoryStore {
	t.Helper()
	store := NewMemoryStore(opts)
	for _, id := range ids {
		store.AddProduct(id)
	}
	return store
}

func TestMemoryStoreBaseline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{Baseline: 0.5}, 1, 2)

	score, err := store.GetScore(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetScore() error = %v", err)
	}
	if score != 0.5 {
		t.Errorf("untouched pair score = %v, want baseline 0.5", score)
	}
}

func TestMemoryStoreSymmetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{}, 1, 2)

	if err := store.Upsert(ctx, 2, 1, 7); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	ab, err := store.GetScore(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetScore(1, 2) error = %v", err)
	}
	ba, err := store.GetScore(ctx, 2, 1)
	if err != nil {
		t.Fatalf("GetScore(2, 1) error = %v", err)
	}
	if ab != ba || ab != 7 {
		t.Errorf("GetScore(1,2) = %v, GetScore(2,1) = %v, want both 7", ab, ba)
	}

	// Writing both directions must not create a second edge.
	if err := store.Upsert(ctx, 1, 2, 9); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if n := store.EdgeCount(); n != 1 {
		t.Errorf("EdgeCount() = %d, want 1", n)
	}
}

func TestMemoryStoreSelfPairRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{}, 1)

	if _, err := store.GetScore(ctx, 1, 1); !errors.Is(err, ErrInvalidPair) {
		t.Errorf("GetScore(1, 1) error = %v, want ErrInvalidPair", err)
	}
	if err := store.Upsert(ctx, 1, 1, 3); !errors.Is(err, ErrInvalidPair) {
		t.Errorf("Upsert(1, 1) error = %v, want ErrInvalidPair", err)
	}
	if err := store.AddDelta(ctx, 1, 1, 1); !errors.Is(err, ErrInvalidPair) {
		t.Errorf("AddDelta(1, 1) error = %v, want ErrInvalidPair", err)
	}
}

func TestMemoryStoreAddDelta(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name   string
		opts   StoreOptions
		deltas []float64
		want   float64
	}{
		{name: "lazy creation from baseline", opts: StoreOptions{Baseline: 0}, deltas: []float64{1}, want: 1},
		{name: "accumulates", opts: StoreOptions{}, deltas: []float64{1, 1, -0.5}, want: 1.5},
		{name: "negative unbounded without clamp", opts: StoreOptions{}, deltas: []float64{-3}, want: -3},
		{
			name:   "clamped at max",
			opts:   StoreOptions{Baseline: 0.5, ClampEnabled: true, ClampMin: 0, ClampMax: 1},
			deltas: []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
			want:   1,
		},
		{
			name:   "clamped at min",
			opts:   StoreOptions{Baseline: 0.5, ClampEnabled: true, ClampMin: 0, ClampMax: 1},
			deltas: []float64{-0.3, -0.3, -0.3},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newTestStore(t, tt.opts, 1, 2)

			for _, d := range tt.deltas {
				if err := store.AddDelta(ctx, 1, 2, d); err != nil {
					t.Fatalf("AddDelta() error = %v", err)
				}
			}

			score, err := store.GetScore(ctx, 1, 2)
			if err != nil {
				t.Fatalf("GetScore() error = %v", err)
			}
			if score != tt.want {
				t.Errorf("score = %v, want %v", score, tt.want)
			}
		})
	}
}

func TestMemoryStoreGetAllScores(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{Baseline: 0}, 1, 2, 3, 4)
	if err := store.Upsert(ctx, 1, 3, 2.5); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	scores, err := store.GetAllScores(ctx, 1)
	if err != nil {
		t.Fatalf("GetAllScores() error = %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("len(scores) = %d, want 3", len(scores))
	}

	byID := make(map[int64]float64, len(scores))
	for _, sp := range scores {
		if sp.ProductID == 1 {
			t.Error("GetAllScores included the focal product")
		}
		byID[sp.ProductID] = sp.Score
	}
	if byID[3] != 2.5 {
		t.Errorf("score against 3 = %v, want 2.5", byID[3])
	}
	if byID[2] != 0 || byID[4] != 0 {
		t.Errorf("untouched pairs = %v/%v, want baseline 0", byID[2], byID[4])
	}
}

func TestMemoryStoreDeleteCascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{}, 1, 2, 3)
	if err := store.Upsert(ctx, 1, 2, 1); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Upsert(ctx, 2, 3, 1); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Upsert(ctx, 1, 3, 1); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := store.DeleteProduct(ctx, 2); err != nil {
		t.Fatalf("DeleteProduct() error = %v", err)
	}

	if n := store.EdgeCount(); n != 1 {
		t.Errorf("EdgeCount() after cascade = %d, want 1", n)
	}
	if ok, _ := store.ProductExists(ctx, 2); ok {
		t.Error("deleted product still live")
	}

	// Delete wins: a write touching the deleted product must fail rather
	// than resurrect an edge.
	if err := store.Upsert(ctx, 1, 2, 5); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("Upsert after delete error = %v, want ErrUnknownProduct", err)
	}
	if err := store.AddDelta(ctx, 2, 3, 1); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("AddDelta after delete error = %v, want ErrUnknownProduct", err)
	}
}

func TestMemoryStoreSeedProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{}, 1, 2, 3)
	if err := store.Upsert(ctx, 1, 2, 9); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := store.SeedProduct(ctx, 1, 0.5); err != nil {
		t.Fatalf("SeedProduct() error = %v", err)
	}

	// Existing edge untouched, missing edge created.
	if score, _ := store.GetScore(ctx, 1, 2); score != 9 {
		t.Errorf("existing edge score = %v, want 9", score)
	}
	if score, _ := store.GetScore(ctx, 1, 3); score != 0.5 {
		t.Errorf("seeded edge score = %v, want 0.5", score)
	}

	if err := store.SeedProduct(ctx, 42, 0.5); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("SeedProduct(unknown) error = %v, want ErrUnknownProduct", err)
	}
}

func TestMemoryStoreSeedAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{}, 1, 2, 3)

	if err := store.SeedAll(ctx, 0.5); err != nil {
		t.Fatalf("SeedAll() error = %v", err)
	}
	if n := store.EdgeCount(); n != 3 {
		t.Errorf("EdgeCount() = %d, want 3 (complete graph over 3 products)", n)
	}
}

func TestMemoryStoreConcurrentDeltas(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newTestStore(t, StoreOptions{}, 1, 2)

	const workers = 64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.AddDelta(ctx, 1, 2, 1); err != nil {
				t.Errorf("AddDelta() error = %v", err)
			}
		}()
	}
	wg.Wait()

	score, err := store.GetScore(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetScore() error = %v", err)
	}
	if score != workers {
		t.Errorf("score after %d concurrent deltas = %v, want %d (no lost updates)", workers, score, workers)
	}
}
