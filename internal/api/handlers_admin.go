// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"net/http"
	"time"

	"github.com/catalogus/catalogus/internal/models"
)

// SeedSimilarity backfills similarity edges between every pair of live
// products, leaving existing edges untouched. Intended as a one-time
// operation when adopting an existing catalog. The optional body score
// overrides the configured seed score.
func (h *Handler) SeedSimilarity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	score := h.recommender.Config().SeedScore
	if r.ContentLength > 0 {
		var req models.SeedRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", nil)
			return
		}
		if req.Score != nil {
			score = *req.Score
		}
	}

	if err := h.recommender.SeedAllAt(r.Context(), score); err != nil {
		respondDomainError(w, err)
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), &models.ProductFilter{})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, models.SeedResult{
		Products: len(products),
		Score:    score,
	}, start)
}
