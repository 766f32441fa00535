// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-storage-sync/internal/app"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/utils"
	"github.com/MKhiriev/go-storage-sync/models"
)

// sendSyncMessage stores a notification for the other devices of the
// account. The source device always comes from the token.
func (h *Handler) sendSyncMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.sendSyncMessage").Msg(app.MsgNoAccountID)
		http.Error(w, app.MsgNoAccountID, http.StatusUnauthorized)
		return
	}
	deviceID, _ := utils.GetDeviceIDFromContext(ctx)

	var msg models.SyncMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		log.Err(err).Str("func", "*Handler.sendSyncMessage").Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}
	msg.SourceDevice = deviceID

	saved, err := h.services.SyncMessageService.Send(ctx, accountID, msg)
	if err != nil {
		log.Err(err).Str("func", "*Handler.sendSyncMessage").Msg("error sending sync message")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, saved, http.StatusCreated)
}

// receiveSyncMessages lists the messages stored after the "after" cursor.
func (h *Handler) receiveSyncMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.receiveSyncMessages").Msg(app.MsgNoAccountID)
		http.Error(w, app.MsgNoAccountID, http.StatusUnauthorized)
		return
	}
	deviceID, _ := utils.GetDeviceIDFromContext(ctx)

	var afterID int64
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			log.Error().Str("after", raw).Msg(app.MsgInvalidSyncCursor)
			http.Error(w, app.MsgInvalidSyncCursor, http.StatusBadRequest)
			return
		}
		afterID = parsed
	}

	response, err := h.services.SyncMessageService.Receive(ctx, accountID, deviceID, afterID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.receiveSyncMessages").Msg("error receiving sync messages")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
