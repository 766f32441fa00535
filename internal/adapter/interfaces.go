// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client-side transport to the remote record
// store.
//
// [RemoteStore] speaks in decrypted manifests and items: implementations seal
// and open envelopes with keys derived from the storage key, so the service
// layer never sees ciphertext. [SyncMessenger] carries cross-device
// notifications.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// ManifestStatus classifies the outcome of [RemoteStore.FetchManifest].
type ManifestStatus int

const (
	// ManifestNoExisting means the account has never written a manifest.
	ManifestNoExisting ManifestStatus = iota
	// ManifestNoNewer means the stored manifest is not newer than the
	// version the caller already has.
	ManifestNoNewer
	// ManifestLatest means Manifest holds the newest remote manifest.
	ManifestLatest
)

func (s ManifestStatus) String() string {
	switch s {
	case ManifestNoExisting:
		return "no_existing"
	case ManifestNoNewer:
		return "no_newer"
	case ManifestLatest:
		return "latest"
	default:
		return "unknown"
	}
}

// FetchManifestResult is returned by [RemoteStore.FetchManifest].
type FetchManifestResult struct {
	Status   ManifestStatus
	Manifest models.Manifest
}

// UpdateManifestRequest is one atomic write against the remote store.
type UpdateManifestRequest struct {
	Manifest           models.Manifest
	NewItems           []models.StorageItem
	DeletedIdentifiers []models.StorageIdentifier
	// DeleteAllExistingRecords purges every stored item before NewItems are
	// inserted.
	DeleteAllExistingRecords bool
}

// UpdateManifestResult is returned by [RemoteStore.UpdateManifest]. A nil
// ConflictingManifest means the write was accepted.
type UpdateManifestResult struct {
	ConflictingManifest *models.Manifest
}

// Conflicted reports whether the write was rejected for a version mismatch.
func (r UpdateManifestResult) Conflicted() bool {
	return r.ConflictingManifest != nil
}

// RemoteStore is the versioned, encrypted record store shared by all devices
// of an account.
type RemoteStore interface {
	// FetchManifest returns the current manifest. When greaterThan is not nil
	// only a manifest newer than *greaterThan is returned. An unreadable
	// manifest yields a *[ManifestReadError].
	FetchManifest(ctx context.Context, greaterThan *uint64) (FetchManifestResult, error)

	// UpdateManifest writes a new manifest version with compare-and-swap
	// semantics. A conflicting manifest that cannot be read yields a
	// *[ManifestReadError].
	UpdateManifest(ctx context.Context, req UpdateManifestRequest) (UpdateManifestResult, error)

	// FetchItems downloads and decrypts the items for identifiers using the
	// key material of manifest. Identifiers missing remotely are omitted.
	FetchItems(ctx context.Context, identifiers []models.StorageIdentifier, manifest models.Manifest) ([]models.StorageItem, error)
}

// SyncMessenger sends and receives cross-device notifications.
type SyncMessenger interface {
	Send(ctx context.Context, msg models.SyncMessage) error
	// Receive returns messages from other devices with an ID greater than
	// afterID, oldest first.
	Receive(ctx context.Context, afterID int64) ([]models.SyncMessage, error)
}

// KeyProvider supplies the storage key used to seal manifests and items.
type KeyProvider interface {
	// StorageKey returns the current storage key or an error wrapping
	// [ErrStorageKeyMissing].
	StorageKey(ctx context.Context) ([]byte, error)
}
