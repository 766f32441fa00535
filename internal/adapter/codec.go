// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/crypto"
	"github.com/MKhiriev/go-storage-sync/models"
)

// storageCodec seals and opens manifest and item envelopes.
type storageCodec struct {
	keychain crypto.KeyChainService
}

func (c storageCodec) sealManifest(storageKey []byte, manifest models.Manifest) (models.ManifestEnvelope, error) {
	plaintext, err := json.Marshal(manifest)
	if err != nil {
		return models.ManifestEnvelope{}, fmt.Errorf("encode manifest: %w", err)
	}
	key, err := c.keychain.ManifestKey(storageKey, manifest.Version)
	if err != nil {
		return models.ManifestEnvelope{}, err
	}
	sealed, err := c.keychain.Encrypt(key, plaintext)
	if err != nil {
		return models.ManifestEnvelope{}, fmt.Errorf("seal manifest: %w", err)
	}
	return models.ManifestEnvelope{Version: manifest.Version, Value: sealed}, nil
}

func (c storageCodec) openManifest(storageKey []byte, envelope models.ManifestEnvelope) (models.Manifest, error) {
	key, err := c.keychain.ManifestKey(storageKey, envelope.Version)
	if err != nil {
		return models.Manifest{}, &ManifestReadError{Version: envelope.Version, Err: fmt.Errorf("%w: %w", ErrManifestDecryption, err)}
	}
	plaintext, err := c.keychain.Decrypt(key, envelope.Value)
	if err != nil {
		return models.Manifest{}, &ManifestReadError{Version: envelope.Version, Err: fmt.Errorf("%w: %w", ErrManifestDecryption, err)}
	}

	var manifest models.Manifest
	if err = json.Unmarshal(plaintext, &manifest); err != nil {
		return models.Manifest{}, &ManifestReadError{Version: envelope.Version, Err: fmt.Errorf("%w: %w", ErrManifestDeserialization, err)}
	}
	if manifest.Version != envelope.Version {
		return models.Manifest{}, &ManifestReadError{
			Version: envelope.Version,
			Err:     fmt.Errorf("%w: envelope version %d, manifest version %d", ErrManifestDeserialization, envelope.Version, manifest.Version),
		}
	}
	return manifest, nil
}

func (c storageCodec) sealItem(storageKey, recordIkm []byte, item models.StorageItem) (models.ItemEnvelope, error) {
	plaintext, err := json.Marshal(item.Record)
	if err != nil {
		return models.ItemEnvelope{}, fmt.Errorf("encode record %s: %w", item.Identifier, err)
	}
	key, err := c.keychain.ItemKey(storageKey, recordIkm, item.Identifier.Data)
	if err != nil {
		return models.ItemEnvelope{}, err
	}
	sealed, err := c.keychain.Encrypt(key, plaintext)
	if err != nil {
		return models.ItemEnvelope{}, fmt.Errorf("seal record %s: %w", item.Identifier, err)
	}
	return models.ItemEnvelope{Key: item.Identifier.Data, Value: sealed}, nil
}

func (c storageCodec) openItem(storageKey, recordIkm []byte, identifier models.StorageIdentifier, envelope models.ItemEnvelope) (models.StorageItem, error) {
	key, err := c.keychain.ItemKey(storageKey, recordIkm, identifier.Data)
	if err != nil {
		return models.StorageItem{}, fmt.Errorf("%w: %s: %w", ErrItemDecryption, identifier, err)
	}
	plaintext, err := c.keychain.Decrypt(key, envelope.Value)
	if err != nil {
		return models.StorageItem{}, fmt.Errorf("%w: %s: %w", ErrItemDecryption, identifier, err)
	}

	var record models.StorageRecord
	if err = json.Unmarshal(plaintext, &record); err != nil {
		return models.StorageItem{}, fmt.Errorf("%w: %s: %w", ErrItemDeserialization, identifier, err)
	}
	return models.StorageItem{Identifier: identifier, Record: record}, nil
}
