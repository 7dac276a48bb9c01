// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package models

// Category is a product category. Each product belongs to at most one.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form label. Products carry any number of tags.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry.
//
// Fields:
//   - Category: populated on detail reads when the product has a category
//   - Tags: always populated on reads, empty slice when untagged
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Tags        []Tag     `json:"tags"`
}

// RecommendedProduct is a product paired with its similarity score against
// the focal product of a recommendation query.
type RecommendedProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// ProductDetail is the product detail payload. Recommendations are bundled
// by default and omitted when the client asks for the raw record.
type ProductDetail struct {
	Product
	Recommendations []RecommendedProduct `json:"recommendations,omitempty"`
}

// ProductFilter narrows product listings. Zero values mean "no constraint".
//
// Fields:
//   - CategoryID: only products in this category
//   - TagIDs: only products carrying ALL of these tags
//   - Search: case-insensitive whole-word match against the description
type ProductFilter struct {
	CategoryID *int64
	TagIDs     []int64
	Search     string
	Limit      int
	Offset     int
}

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=4096"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	TagIDs      []int64 `json:"tag_ids" validate:"omitempty,dive,gt=0"`
}

// UpdateProductRequest is the payload for replacing a product's fields.
// Tag associations are replaced wholesale with TagIDs.
type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=4096"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	TagIDs      []int64 `json:"tag_ids" validate:"omitempty,dive,gt=0"`
}

// FeedbackRequest is the payload for a recommendation click event: the user
// viewed ProductID, was shown the clicked product plus OtherProductIDs, and
// clicked ClickedProductID.
type FeedbackRequest struct {
	ProductID        int64   `json:"product_id" validate:"required,gt=0"`
	ClickedProductID int64   `json:"clicked_product_id" validate:"required,gt=0"`
	OtherProductIDs  []int64 `json:"other_product_ids" validate:"omitempty,dive,gt=0"`
}

// SeedRequest is the payload for the bulk similarity seeding endpoint.
// Score overrides the configured seed score when set.
type SeedRequest struct {
	Score *float64 `json:"score" validate:"omitempty"`
}

// SeedResult reports the outcome of a bulk seeding run.
type SeedResult struct {
	Products int     `json:"products"`
	Score    float64 `json:"score"`
}
