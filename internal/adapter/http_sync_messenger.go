// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/utils"
	"github.com/MKhiriev/go-storage-sync/models"
)

type httpSyncMessenger struct {
	client   *utils.HTTPClient
	deviceID string

	logger *logger.Logger
}

// NewHTTPSyncMessenger constructs an HTTP/REST implementation of
// [SyncMessenger].
func NewHTTPSyncMessenger(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (SyncMessenger, error) {
	client, err := newHTTPClient(adapterCfg, appCfg)
	if err != nil {
		return nil, err
	}
	return &httpSyncMessenger{client: client, deviceID: appCfg.DeviceID, logger: logger}, nil
}

// Send implements [SyncMessenger] via POST /v1/sync-messages.
func (h *httpSyncMessenger) Send(ctx context.Context, msg models.SyncMessage) error {
	if msg.SourceDevice == "" {
		msg.SourceDevice = h.deviceID
	}

	r, err := withSnappyBody(h.client.R().SetContext(ctx), msg)
	if err != nil {
		return err
	}
	resp, err := r.Post(syncMessagesPath)
	if err != nil {
		return fmt.Errorf("send sync message request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	logger.FromContext(ctx).Debug().
		Str("func", "*httpSyncMessenger.Send").
		Str("type", string(msg.Type)).
		Msg("sync message sent")
	return nil
}

// Receive implements [SyncMessenger] via GET /v1/sync-messages?after={id}.
func (h *httpSyncMessenger) Receive(ctx context.Context, afterID int64) ([]models.SyncMessage, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("after", strconv.FormatInt(afterID, 10)).
		Get(syncMessagesPath)
	if err != nil {
		return nil, fmt.Errorf("receive sync messages request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var body models.SyncMessagesResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode sync messages: %w", ErrUnexpectedResponse, err)
	}
	return body.Messages, nil
}
