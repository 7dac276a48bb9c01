// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/catalogus/catalogus/internal/database"
	"github.com/catalogus/catalogus/internal/metrics"
	"github.com/catalogus/catalogus/internal/models"
	"github.com/catalogus/catalogus/internal/similarity"
)

// ListProducts returns products matching the query filters.
//
// Query parameters:
//   - category: category ID
//   - tags: comma-separated tag IDs; products must carry all of them
//   - search: case-insensitive whole-word description search
//   - limit, offset: pagination (limit capped at the configured maximum)
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter := models.ProductFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "limit", h.cfg.API.DefaultPageSize),
		Offset: queryInt(r, "offset", 0),
	}
	if filter.Limit < 1 || filter.Limit > h.cfg.API.MaxPageSize {
		filter.Limit = h.cfg.API.MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if raw := r.URL.Query().Get("category"); raw != "" {
		id := int64(queryInt(r, "category", 0))
		if id < 1 {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "category must be a positive integer", nil)
			return
		}
		filter.CategoryID = &id
	}

	tagIDs, ok := queryInt64List(r, "tags")
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "tags must be a comma-separated list of positive integers", nil)
		return
	}
	filter.TagIDs = tagIDs

	products, err := h.catalog.ListProducts(r.Context(), &filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, products, start)
}

// CreateProduct creates a product from the request body.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// Seeding is a no-op unless enabled in the configuration.
	if err := h.recommender.SeedProduct(r.Context(), product.ID); err != nil {
		h.logger.Warn().Err(err).Int64("product_id", product.ID).Msg("similarity seeding failed")
	}

	respondSuccess(w, http.StatusCreated, product, start)
}

// GetProduct returns a product's detail. Recommendations are bundled by
// default; ?raw=1 returns the bare record.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	detail := models.ProductDetail{Product: *product}
	if r.URL.Query().Get("raw") != "1" {
		recs, err := h.bundledRecommendations(r.Context(), id)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		detail.Recommendations = recs
	}

	respondSuccess(w, http.StatusOK, detail, start)
}

// UpdateProduct replaces a product's fields and tag associations.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	var req models.UpdateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, product, start)
}

// DeleteProduct removes a product. The catalog notifies the similarity
// engine, which purges every edge touching the product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	metrics.SimilarityPurgesTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// Recommendations returns the top-k similar products for a product.
//
// Query parameters:
//   - k: result count; defaults to the configured default, capped at the
//     configured maximum
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}
	k := queryInt(r, "k", 0)

	scored, err := h.recommender.Recommend(r.Context(), id, k)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	metrics.RecommendRequestsTotal.Inc()

	recs, err := h.resolveProducts(r.Context(), scored)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, recs, start)
}

// bundledRecommendations fetches the default-k recommendations for the
// product detail view.
func (h *Handler) bundledRecommendations(ctx context.Context, id int64) ([]models.RecommendedProduct, error) {
	scored, err := h.recommender.Recommend(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	metrics.RecommendRequestsTotal.Inc()
	return h.resolveProducts(ctx, scored)
}

// resolveProducts joins scored IDs with their catalog records. A product
// deleted between ranking and resolution is silently dropped.
func (h *Handler) resolveProducts(ctx context.Context, scored []similarity.ScoredProduct) ([]models.RecommendedProduct, error) {
	recs := make([]models.RecommendedProduct, 0, len(scored))
	for _, sp := range scored {
		product, err := h.catalog.GetProduct(ctx, sp.ProductID)
		if err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		recs = append(recs, models.RecommendedProduct{Product: *product, Score: sp.Score})
	}
	return recs, nil
}
