// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/models"
)

// Operations is the set of sync operations the [Manager] schedules. Exactly
// one of them runs at a time; implementations may assume they never run
// concurrently with each other.
type Operations interface {
	// FlushPendingMutations folds buffered "entity changed" notifications into
	// the persisted sync state.
	FlushPendingMutations(ctx context.Context, mutations []PendingMutation) error

	// Backup pushes every entity marked as updated to the remote store.
	Backup(ctx context.Context) error

	// RestoreOrCreate pulls a newer remote manifest, or creates the first one.
	RestoreOrCreate(ctx context.Context) error

	// RotateManifest writes a brand-new manifest version from local data.
	RotateManifest(ctx context.Context, mode RotationMode) error

	// CleanUp runs the best-effort consistency sweep.
	CleanUp(ctx context.Context) error

	// ResetLocalState wipes the persisted sync state.
	ResetLocalState(ctx context.Context) error

	// HasPendingChanges reports whether any entity is marked as updated.
	HasPendingChanges(ctx context.Context) (bool, error)
}

// RecordUpdater converts one kind of local entity to its wire record and
// back. ID is the local identity of an entity; the account record uses
// [Singleton].
type RecordUpdater[ID comparable, R any] interface {
	// LocalIDs enumerates every local entity that may be synced.
	LocalIDs(ctx context.Context) ([]ID, error)

	// BuildRecord builds the wire record of id, carrying unknown over
	// verbatim. ok is false when the entity no longer has a representation
	// worth syncing; the engine treats that as a deletion.
	BuildRecord(ctx context.Context, id ID, unknown models.UnknownFields) (record R, ok bool, err error)

	// MergeRecord applies a remote record to local state. It must be
	// idempotent.
	MergeRecord(ctx context.Context, record R) (MergeResult[ID], error)

	// UnknownFields returns the members of record this build does not
	// understand.
	UnknownFields(record R) models.UnknownFields

	// ShouldReaddOrphan reports whether an entity missing from the remote
	// manifest must be uploaded again. Entities a peer may legitimately drop
	// return false.
	ShouldReaddOrphan(ctx context.Context, id ID) (bool, error)

	// ShouldDeferMerge reports whether record should be merged after all
	// records carrying firmer identity evidence.
	ShouldDeferMerge(record R) bool
}

// StateStore persists the single sync state blob.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Reset(ctx context.Context) error
}

// KeyStore holds the storage key of this device.
type KeyStore interface {
	// StorageKey returns the key or an error wrapping
	// adapter.ErrStorageKeyMissing.
	StorageKey(ctx context.Context) ([]byte, error)
	SetStorageKey(ctx context.Context, key []byte) error
	ClearStorageKey(ctx context.Context) error
}

// RecordIkmCapabilityStore tracks whether this device encrypts records with a
// dedicated recordIkm.
type RecordIkmCapabilityStore interface {
	IsRecordIkmCapable(ctx context.Context) (bool, error)
	SetRecordIkmCapable(ctx context.Context) error
}

// LocalRecipientResolver finds the recipient row of the local user, so that
// contact mutations of the local user are redirected to the account record.
type LocalRecipientResolver interface {
	LocalRecipientID(ctx context.Context) (id models.RecipientID, ok bool, err error)
}
