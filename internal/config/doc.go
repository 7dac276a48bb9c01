// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

/*
Package config provides centralized configuration management for Catalogus.

Configuration is loaded with Koanf v2 from three layered sources, later
layers overriding earlier ones:

 1. Built-in defaults
 2. Optional YAML config file (config.yaml, or CONFIG_PATH)
 3. Environment variables

# Configuration Structure

The configuration is organized into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeouts)
  - DatabaseConfig: DuckDB path and performance tuning
  - APIConfig: pagination, rate limiting, and CORS settings
  - similarity.Config: recommendation engine tuning
  - LoggingConfig: zerolog level and output format

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal("Failed to load config:", err)
	}
	// cfg.Server.Addr(), cfg.Database.Path, etc. are now populated

The returned Config is validated and immutable; it is safe for concurrent
read access.
*/
package config
