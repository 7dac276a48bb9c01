// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"net/http"

	"github.com/catalogus/catalogus/internal/metrics"
	"github.com/catalogus/catalogus/internal/models"
)

// Feedback records a recommendation click event: the clicked candidate is
// rewarded, every other shown candidate is penalized. Responds 204; the
// client re-queries recommendations if it wants updated rankings.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		metrics.FeedbackEventsTotal.WithLabelValues("rejected").Inc()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.recommender.RecordFeedback(r.Context(), req.ProductID, req.ClickedProductID, req.OtherProductIDs)
	if err != nil {
		metrics.FeedbackEventsTotal.WithLabelValues("rejected").Inc()
		respondDomainError(w, err)
		return
	}

	metrics.FeedbackEventsTotal.WithLabelValues("applied").Inc()
	w.WriteHeader(http.StatusNoContent)
}
