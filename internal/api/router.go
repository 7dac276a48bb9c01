// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/catalogus/catalogus/internal/config"
)

// NewRouter wires all HTTP routes.
func NewRouter(handler *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(&cfg.API)) // global so OPTIONS preflight is handled everywhere

	// Health endpoints skip rate limiting so monitors are never throttled.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(&cfg.API))
		r.Use(PrometheusMetrics)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handler.ListProducts)
			r.Post("/", handler.CreateProduct)
			r.Get("/{id}", handler.GetProduct)
			r.Put("/{id}", handler.UpdateProduct)
			r.Delete("/{id}", handler.DeleteProduct)
			r.Get("/{id}/recommendations", handler.Recommendations)
		})

		r.Post("/feedback", handler.Feedback)
		r.Get("/categories", handler.Categories)
		r.Get("/tags", handler.Tags)

		r.Post("/admin/similarity/seed", handler.SeedSimilarity)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
