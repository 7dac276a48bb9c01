// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

// Package models defines the data structures shared between the database
// layer and the HTTP API: catalog entities (Product, Category, Tag),
// request payloads, and the standardized APIResponse envelope every
// endpoint returns.
//
// The package holds plain data types only. Behavior lives in the packages
// that consume them.
package models
