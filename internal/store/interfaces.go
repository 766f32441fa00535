// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// StorageRepository is the server-side compare-and-swap record store. It never
// looks inside envelope values.
type StorageRepository interface {
	// GetManifest returns the current manifest or [ErrManifestNotFound].
	GetManifest(ctx context.Context, accountID string) (models.ManifestEnvelope, error)
	// GetManifestIfNewer returns the current manifest only when its version is
	// greater than version, otherwise [ErrManifestNotNewer].
	GetManifestIfNewer(ctx context.Context, accountID string, version uint64) (models.ManifestEnvelope, error)
	// Write applies op atomically. On a version mismatch it returns the
	// stored manifest together with [ErrVersionConflict].
	Write(ctx context.Context, accountID string, op models.WriteOperation) (models.ManifestEnvelope, error)
	// ReadItems returns the stored items for keys, omitting missing ones.
	ReadItems(ctx context.Context, accountID string, keys [][]byte) ([]models.ItemEnvelope, error)
}

// SyncMessageRepository keeps cross-device notifications of an account.
type SyncMessageRepository interface {
	// Append stores msg and returns it with ID and CreatedAt populated.
	Append(ctx context.Context, accountID string, msg models.SyncMessage) (models.SyncMessage, error)
	// ListAfter returns messages with an ID greater than afterID that were
	// sent by devices other than deviceID, oldest first.
	ListAfter(ctx context.Context, accountID, deviceID string, afterID int64, limit uint64) ([]models.SyncMessage, error)
}
