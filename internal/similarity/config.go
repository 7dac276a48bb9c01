// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package similarity

import "fmt"

// Config contains all configuration for the similarity engine.
// The exact feedback magnitudes are a product decision, not an algorithmic
// one, so increment, decrement, baseline, and clamping are all tunable.
type Config struct {
	// Baseline is the implicit score for a pair that has never been
	// explicitly updated. Reads treat absence as this value, and an update
	// on a missing edge starts from it before applying the delta.
	Baseline float64 `koanf:"baseline" json:"baseline"`

	// Increment is added to the clicked candidate's score on feedback.
	Increment float64 `koanf:"increment" json:"increment"`

	// Decrement is subtracted from each non-clicked candidate's score.
	Decrement float64 `koanf:"decrement" json:"decrement"`

	// ClampEnabled bounds scores to [ClampMin, ClampMax] before upsert.
	ClampEnabled bool `koanf:"clamp_enabled" json:"clamp_enabled"`

	// ClampMin is the lower score bound when clamping is enabled.
	ClampMin float64 `koanf:"clamp_min" json:"clamp_min"`

	// ClampMax is the upper score bound when clamping is enabled.
	ClampMax float64 `koanf:"clamp_max" json:"clamp_max"`

	// DefaultK is the number of recommendations returned when the caller
	// does not specify k.
	DefaultK int `koanf:"default_k" json:"default_k"`

	// MaxK caps the number of recommendations a single request may ask for.
	MaxK int `koanf:"max_k" json:"max_k"`

	// SeedOnCreate seeds edges between a newly created product and every
	// existing product at SeedScore, instead of lazy creation.
	SeedOnCreate bool `koanf:"seed_on_create" json:"seed_on_create"`

	// SeedScore is the initial score used when seeding edges.
	SeedScore float64 `koanf:"seed_score" json:"seed_score"`
}

// DefaultConfig returns the default engine configuration: baseline 0,
// unit feedback deltas, no clamping, top-3 recommendations, lazy edges.
func DefaultConfig() *Config {
	return &Config{
		Baseline:     0,
		Increment:    1,
		Decrement:    1,
		ClampEnabled: false,
		ClampMin:     0,
		ClampMax:     1,
		DefaultK:     3,
		MaxK:         50,
		SeedOnCreate: false,
		SeedScore:    0.5,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Increment <= 0 {
		return fmt.Errorf("increment must be positive, got %v", c.Increment)
	}
	if c.Decrement < 0 {
		return fmt.Errorf("decrement must not be negative, got %v", c.Decrement)
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be at least 1, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k (%d) must not be below default_k (%d)", c.MaxK, c.DefaultK)
	}
	if c.ClampEnabled {
		if c.ClampMin >= c.ClampMax {
			return fmt.Errorf("clamp_min (%v) must be below clamp_max (%v)", c.ClampMin, c.ClampMax)
		}
		if c.Baseline < c.ClampMin || c.Baseline > c.ClampMax {
			return fmt.Errorf("baseline (%v) outside clamp bounds [%v, %v]", c.Baseline, c.ClampMin, c.ClampMax)
		}
		if c.SeedScore < c.ClampMin || c.SeedScore > c.ClampMax {
			return fmt.Errorf("seed_score (%v) outside clamp bounds [%v, %v]", c.SeedScore, c.ClampMin, c.ClampMax)
		}
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// StoreOptions derives the store-level options from the engine config.
func (c *Config) StoreOptions() StoreOptions {
	return StoreOptions{
		Baseline:     c.Baseline,
		ClampEnabled: c.ClampEnabled,
		ClampMin:     c.ClampMin,
		ClampMax:     c.ClampMax,
	}
}
