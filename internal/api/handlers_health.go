// Catalogus - Product Catalog and Similarity-Driven Recommendations
// Copyright 2026 The Catalogus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/catalogus/catalogus

package api

import (
	"net/http"
	"time"
)

// Health reports overall service health, including the database check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := "ok"
	code := http.StatusOK
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error().Err(err).Msg("health check database ping failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	respondSuccess(w, code, map[string]string{"status": status}, start)
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady is the readiness probe: the database answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "NOT_READY", "database not reachable", err)
			return
		}
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, start)
}
