// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
)

// Sync engine errors.
var (
	// ErrTooManyConsecutiveConflicts stops a backup that keeps losing the
	// manifest race against another device.
	ErrTooManyConsecutiveConflicts = errors.New("too many consecutive manifest conflicts")

	// ErrRepeatedCreateConflict means a manifest recreation conflicted twice
	// in a row.
	ErrRepeatedCreateConflict = errors.New("manifest creation conflicted twice")

	// ErrNotPrimaryDevice is returned for operations only the primary device
	// may run.
	ErrNotPrimaryDevice = errors.New("operation requires the primary device")

	// ErrKeysRequested means a linked device could not decrypt remote data
	// and asked the primary for a fresh storage key.
	ErrKeysRequested = errors.New("storage key rejected, keys requested from primary device")

	// ErrCorruptState means the persisted sync state could not be decoded.
	ErrCorruptState = errors.New("sync state is corrupt")

	// ErrUnknownChangeState means a persisted change marker has an unknown
	// value.
	ErrUnknownChangeState = errors.New("unknown change state")

	// ErrManifestNotRestored means local state has never merged the remote
	// manifest, so a rotation would overwrite records it has not seen.
	ErrManifestNotRestored = errors.New("remote manifest not restored yet")

	// ErrRecordIkmNotWritten means a rotation finished without leaving a
	// recordIkm in the manifest, e.g. because it was skipped.
	ErrRecordIkmNotWritten = errors.New("rotation did not write a recordIkm")

	// ErrManagerClosed resolves futures still pending when the manager
	// shuts down.
	ErrManagerClosed = errors.New("sync manager closed")
)

// Server side errors.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrNoAccountProvided   = errors.New("no account ID provided")
	ErrNoDeviceProvided    = errors.New("no device ID provided")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
)

// isHardError reports whether err must not be retried by the operation
// runner.
func isHardError(err error) bool {
	return errors.Is(err, ErrTooManyConsecutiveConflicts) ||
		errors.Is(err, ErrRepeatedCreateConflict) ||
		errors.Is(err, ErrNotPrimaryDevice) ||
		errors.Is(err, ErrKeysRequested) ||
		errors.Is(err, ErrCorruptState) ||
		errors.Is(err, ErrUnknownChangeState) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, adapter.ErrBadRequest) ||
		errors.Is(err, adapter.ErrUnauthorized) ||
		errors.Is(err, adapter.ErrForbidden)
}
