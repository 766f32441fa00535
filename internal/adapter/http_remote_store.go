// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/crypto"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/utils"
	"github.com/MKhiriev/go-storage-sync/models"
)

type httpRemoteStore struct {
	client *utils.HTTPClient
	codec  storageCodec
	keys   KeyProvider

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, appCfg config.ClientApp, keychain crypto.KeyChainService, keys KeyProvider, logger *logger.Logger) (RemoteStore, error) {
	client, err := newHTTPClient(adapterCfg, appCfg)
	if err != nil {
		return nil, err
	}

	return &httpRemoteStore{
		client: client,
		codec:  storageCodec{keychain: keychain},
		keys:   keys,
		logger: logger,
	}, nil
}

// FetchManifest implements [RemoteStore]. It issues
// GET /v1/storage/manifest, or GET /v1/storage/manifest/version/{v} when
// greaterThan is set. 404 means no manifest exists, 204 means the stored one
// is not newer.
func (h *httpRemoteStore) FetchManifest(ctx context.Context, greaterThan *uint64) (FetchManifestResult, error) {
	storageKey, err := h.keys.StorageKey(ctx)
	if err != nil {
		return FetchManifestResult{}, err
	}

	req := h.client.R().SetContext(ctx)
	path := manifestPath
	if greaterThan != nil {
		req.SetPathParam("version", strconv.FormatUint(*greaterThan, 10))
		path = manifestVersionPath
	}

	resp, err := req.Get(path)
	if err != nil {
		return FetchManifestResult{}, fmt.Errorf("fetch manifest request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return FetchManifestResult{Status: ManifestNoExisting}, nil
	case http.StatusNoContent:
		return FetchManifestResult{Status: ManifestNoNewer}, nil
	}
	if err = mapHTTPError(resp); err != nil {
		return FetchManifestResult{}, err
	}

	var envelope models.ManifestEnvelope
	if err = json.Unmarshal(resp.Body(), &envelope); err != nil {
		return FetchManifestResult{}, fmt.Errorf("%w: decode manifest envelope: %w", ErrUnexpectedResponse, err)
	}

	manifest, err := h.codec.openManifest(storageKey, envelope)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*httpRemoteStore.FetchManifest").
			Uint64("version", envelope.Version).
			Msg("remote manifest is unreadable")
		return FetchManifestResult{}, err
	}

	return FetchManifestResult{Status: ManifestLatest, Manifest: manifest}, nil
}

// UpdateManifest implements [RemoteStore]. It seals the manifest and every new
// item and issues PUT /v1/storage. A 409 response carries the stored manifest
// envelope, which is opened and returned as the conflicting manifest.
func (h *httpRemoteStore) UpdateManifest(ctx context.Context, req UpdateManifestRequest) (UpdateManifestResult, error) {
	log := logger.FromContext(ctx)

	storageKey, err := h.keys.StorageKey(ctx)
	if err != nil {
		return UpdateManifestResult{}, err
	}

	manifestEnvelope, err := h.codec.sealManifest(storageKey, req.Manifest)
	if err != nil {
		return UpdateManifestResult{}, err
	}

	op := models.WriteOperation{
		Manifest:    manifestEnvelope,
		InsertItems: make([]models.ItemEnvelope, 0, len(req.NewItems)),
		DeleteKeys:  make([][]byte, 0, len(req.DeletedIdentifiers)),
		DeleteAll:   req.DeleteAllExistingRecords,
	}
	for _, item := range req.NewItems {
		envelope, err := h.codec.sealItem(storageKey, req.Manifest.RecordIkm, item)
		if err != nil {
			return UpdateManifestResult{}, err
		}
		op.InsertItems = append(op.InsertItems, envelope)
	}
	for _, id := range req.DeletedIdentifiers {
		op.DeleteKeys = append(op.DeleteKeys, id.Data)
	}

	r, err := withSnappyBody(h.client.R().SetContext(ctx), op)
	if err != nil {
		return UpdateManifestResult{}, err
	}
	resp, err := r.Put(storagePath)
	if err != nil {
		return UpdateManifestResult{}, fmt.Errorf("update manifest request: %w", err)
	}

	if resp.StatusCode() == http.StatusConflict {
		var envelope models.ManifestEnvelope
		if err = json.Unmarshal(resp.Body(), &envelope); err != nil {
			return UpdateManifestResult{}, fmt.Errorf("%w: decode conflicting manifest: %w", ErrUnexpectedResponse, err)
		}
		conflicting, err := h.codec.openManifest(storageKey, envelope)
		if err != nil {
			return UpdateManifestResult{}, err
		}
		log.Info().
			Str("func", "*httpRemoteStore.UpdateManifest").
			Uint64("attempted_version", req.Manifest.Version).
			Uint64("remote_version", conflicting.Version).
			Msg("manifest write conflicted")
		return UpdateManifestResult{ConflictingManifest: &conflicting}, nil
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).
			Str("func", "*httpRemoteStore.UpdateManifest").
			Uint64("version", req.Manifest.Version).
			Msg("manifest write failed")
		return UpdateManifestResult{}, err
	}

	return UpdateManifestResult{}, nil
}

// FetchItems implements [RemoteStore]. It issues PUT /v1/storage/read with the
// raw identifier bytes and opens every returned envelope.
func (h *httpRemoteStore) FetchItems(ctx context.Context, identifiers []models.StorageIdentifier, manifest models.Manifest) ([]models.StorageItem, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}

	storageKey, err := h.keys.StorageKey(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]models.StorageIdentifier, len(identifiers))
	op := models.ReadOperation{ReadKeys: make([][]byte, 0, len(identifiers))}
	for _, id := range identifiers {
		byKey[string(id.Data)] = id
		op.ReadKeys = append(op.ReadKeys, id.Data)
	}

	r, err := withSnappyBody(h.client.R().SetContext(ctx), op)
	if err != nil {
		return nil, err
	}
	resp, err := r.Put(storageReadPath)
	if err != nil {
		return nil, fmt.Errorf("fetch items request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var read models.ReadResponse
	if err = json.Unmarshal(resp.Body(), &read); err != nil {
		return nil, fmt.Errorf("%w: decode read response: %w", ErrUnexpectedResponse, err)
	}

	items := make([]models.StorageItem, 0, len(read.Items))
	for _, envelope := range read.Items {
		id, ok := byKey[string(envelope.Key)]
		if !ok {
			return nil, fmt.Errorf("%w: item %x was not requested", ErrUnexpectedResponse, envelope.Key)
		}
		item, err := h.codec.openItem(storageKey, manifest.RecordIkm, id, envelope)
		if err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "*httpRemoteStore.FetchItems").
				Str("identifier", id.String()).
				Msg("remote item is unreadable")
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// IsManifestReadError reports whether err carries a *[ManifestReadError] and
// returns it.
func IsManifestReadError(err error) (*ManifestReadError, bool) {
	var readErr *ManifestReadError
	if errors.As(err, &readErr) {
		return readErr, true
	}
	return nil, false
}
