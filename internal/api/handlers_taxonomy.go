// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"net/http"
	"time"
)

// Categories returns all product categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, categories, start)
}

// Tags returns all product tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, tags, start)
}
