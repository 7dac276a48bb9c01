// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/catalogus/catalogus/internal/config"
	"github.com/catalogus/catalogus/internal/models"
	"github.com/catalogus/catalogus/internal/similarity"
)

// CatalogStore is the catalog surface the handlers consume. Implemented by
// database.DB; kept narrow so handler tests can use an in-memory fake.
type CatalogStore interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, filter *models.ProductFilter) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Recommender is the similarity engine surface the handlers consume.
// Implemented by similarity.Engine.
type Recommender interface {
	Recommend(ctx context.Context, productID int64, k int) ([]similarity.ScoredProduct, error)
	RecordFeedback(ctx context.Context, focalID, clickedID int64, otherIDs []int64) error
	SeedProduct(ctx context.Context, productID int64) error
	SeedAll(ctx context.Context) error
	SeedAllAt(ctx context.Context, score float64) error
	Config() *similarity.Config
}

// Pinger reports backing-store health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	catalog     CatalogStore
	recommender Recommender
	pinger      Pinger
	cfg         *config.Config
	logger      zerolog.Logger
}

// NewHandler creates the handler set. pinger may be nil; the readiness
// probe then reports ready unconditionally.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(catalog CatalogStore, recommender Recommender, pinger Pinger, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog:     catalog,
		recommender: recommender,
		pinger:      pinger,
		cfg:         cfg,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}
