// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// SyncMessageHandler reacts to notifications sent by the other devices of
// the account.
type SyncMessageHandler struct {
	manager   *Manager
	messenger adapter.SyncMessenger
	keys      KeyStore
	kv        store.KeyValueStore
	app       config.ClientApp
	logger    *logger.Logger
}

// NewSyncMessageHandler builds the handler of one device.
func NewSyncMessageHandler(manager *Manager, messenger adapter.SyncMessenger, keys KeyStore, kv store.KeyValueStore, app config.ClientApp, logger *logger.Logger) *SyncMessageHandler {
	return &SyncMessageHandler{
		manager:   manager,
		messenger: messenger,
		keys:      keys,
		kv:        kv,
		app:       app,
		logger:    logger,
	}
}

// Poll receives the messages newer than the stored cursor and handles them
// in order. The cursor only advances past handled messages.
func (h *SyncMessageHandler) Poll(ctx context.Context) error {
	after, err := h.cursor(ctx)
	if err != nil {
		return err
	}

	messages, err := h.messenger.Receive(ctx, after)
	if err != nil {
		return fmt.Errorf("receive sync messages: %w", err)
	}

	for _, msg := range messages {
		if msg.SourceDevice != h.app.DeviceID {
			if err = h.Handle(ctx, msg); err != nil {
				return err
			}
		}
		if err = h.setCursor(ctx, msg.ID); err != nil {
			return err
		}
	}
	return nil
}

// Handle acts on one message.
func (h *SyncMessageHandler) Handle(ctx context.Context, msg models.SyncMessage) error {
	log := h.logger.With().Int64("message_id", msg.ID).Str("type", string(msg.Type)).Logger()

	switch msg.Type {
	case models.SyncMessageFetchLatestManifest:
		h.manager.RequestRestoreOrCreate()

	case models.SyncMessageRequestKeys:
		if !h.app.PrimaryDevice {
			return nil
		}
		key, err := h.keys.StorageKey(ctx)
		if errors.Is(err, adapter.ErrStorageKeyMissing) {
			log.Warn().Msg("keys requested but no storage key is set")
			return nil
		}
		if err != nil {
			return err
		}
		if err = h.messenger.Send(ctx, models.SyncMessage{Type: models.SyncMessageKeys, Payload: key}); err != nil {
			return fmt.Errorf("send keys: %w", err)
		}
		log.Info().Str("to_device", msg.SourceDevice).Msg("sent storage key")

	case models.SyncMessageKeys:
		if h.app.PrimaryDevice {
			return nil
		}
		if len(msg.Payload) == 0 {
			log.Warn().Msg("keys message without a key")
			return nil
		}
		if err := h.keys.SetStorageKey(ctx, msg.Payload); err != nil {
			return fmt.Errorf("store storage key: %w", err)
		}
		log.Info().Msg("received storage key, restoring")
		h.manager.RequestRestoreOrCreate()

	default:
		log.Warn().Msg("ignoring unknown sync message")
	}
	return nil
}

func (h *SyncMessageHandler) cursor(ctx context.Context) (int64, error) {
	value, err := h.kv.Get(ctx, syncCursorKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read sync message cursor: %w", err)
	}
	return strconv.ParseInt(string(value), 10, 64)
}

func (h *SyncMessageHandler) setCursor(ctx context.Context, id int64) error {
	return h.kv.Set(ctx, syncCursorKey, []byte(strconv.FormatInt(id, 10)))
}
