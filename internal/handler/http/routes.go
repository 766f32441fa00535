// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withSnappy)

	// every storage route belongs to the account named by the bearer token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/v1/storage/manifest", h.getManifest)
		r.Get("/v1/storage/manifest/version/{version}", h.getManifestIfNewer)
		r.Put("/v1/storage", h.writeStorage)
		r.Put("/v1/storage/read", h.readStorage)

		r.Post("/v1/sync-messages", h.sendSyncMessage)
		r.Get("/v1/sync-messages", h.receiveSyncMessages)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
