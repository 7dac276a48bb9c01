// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package database

import "errors"

var (
	// ErrProductNotFound is returned when a product ID does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrCategoryNotFound is returned when a referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrTagNotFound is returned when a referenced tag does not exist.
	ErrTagNotFound = errors.New("tag not found")
)
