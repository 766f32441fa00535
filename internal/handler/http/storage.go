// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-storage-sync/internal/app"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/internal/utils"
	"github.com/MKhiriev/go-storage-sync/models"
)

func (h *Handler) getManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getManifest").Msg(app.MsgNoAccountID)
		http.Error(w, app.MsgNoAccountID, http.StatusUnauthorized)
		return
	}

	manifest, err := h.services.StorageService.GetManifest(ctx, accountID)
	if err != nil {
		if !errors.Is(err, store.ErrManifestNotFound) {
			log.Err(err).Str("func", "*Handler.getManifest").Msg("error getting manifest")
		}
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, manifest, http.StatusOK)
}

// getManifestIfNewer answers 204 No Content when the stored manifest is not
// newer than the version in the path.
func (h *Handler) getManifestIfNewer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getManifestIfNewer").Msg(app.MsgNoAccountID)
		http.Error(w, app.MsgNoAccountID, http.StatusUnauthorized)
		return
	}

	version, err := strconv.ParseUint(chi.URLParam(r, "version"), 10, 64)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getManifestIfNewer").Msg(app.MsgInvalidManifestVersion)
		http.Error(w, app.MsgInvalidManifestVersion, http.StatusBadRequest)
		return
	}

	manifest, err := h.services.StorageService.GetManifestIfNewer(ctx, accountID, version)
	switch {
	case errors.Is(err, store.ErrManifestNotNewer):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		if !errors.Is(err, store.ErrManifestNotFound) {
			log.Err(err).Str("func", "*Handler.getManifestIfNewer").Msg("error getting manifest")
		}
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, manifest, http.StatusOK)
}

// writeStorage applies a write operation. A version conflict answers 409
// with the currently stored manifest in the body.
func (h *Handler) writeStorage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.writeStorage").Msg(app.MsgNoAccountID)
		http.Error(w, app.MsgNoAccountID, http.StatusUnauthorized)
		return
	}

	var op models.WriteOperation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		log.Err(err).Str("func", "*Handler.writeStorage").Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	current, err := h.services.StorageService.Write(ctx, accountID, op)
	if errors.Is(err, store.ErrVersionConflict) {
		log.Info().
			Uint64("attempted_version", op.Manifest.Version).
			Uint64("current_version", current.Version).
			Msg("manifest version conflict")
		utils.WriteJSON(w, current, http.StatusConflict)
		return
	}
	if err != nil {
		log.Err(err).Str("func", "*Handler.writeStorage").Msg("error writing storage")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) readStorage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.readStorage").Msg(app.MsgNoAccountID)
		http.Error(w, app.MsgNoAccountID, http.StatusUnauthorized)
		return
	}

	var op models.ReadOperation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		log.Err(err).Str("func", "*Handler.readStorage").Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	response, err := h.services.StorageService.Read(ctx, accountID, op)
	if err != nil {
		log.Err(err).Str("func", "*Handler.readStorage").Msg("error reading storage")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
