// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"fmt"
)

// HTTP status sentinels produced by mapHTTPError.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
)

// Content errors of the remote store.
var (
	// ErrManifestDecryption means the manifest could not be opened with the
	// current storage key.
	ErrManifestDecryption = errors.New("manifest decryption failed")

	// ErrManifestDeserialization means the decrypted manifest is not valid.
	ErrManifestDeserialization = errors.New("manifest deserialization failed")

	// ErrItemDecryption means an item could not be opened with its key.
	ErrItemDecryption = errors.New("item decryption failed")

	// ErrItemDeserialization means a decrypted item is not a valid record.
	ErrItemDeserialization = errors.New("item deserialization failed")

	// ErrStorageKeyMissing means no storage key is available on this device.
	ErrStorageKeyMissing = errors.New("storage key missing")

	// ErrUnexpectedResponse means the server answered with a body the client
	// cannot interpret.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// ManifestReadError reports a manifest that exists remotely but cannot be
// decrypted or decoded. Version is the envelope version the store reported.
type ManifestReadError struct {
	Version uint64
	Err     error
}

func (e *ManifestReadError) Error() string {
	return fmt.Sprintf("manifest version %d unreadable: %v", e.Version, e.Err)
}

func (e *ManifestReadError) Unwrap() error {
	return e.Err
}

// IsItemReadError reports whether err means an item could not be decrypted
// or decoded.
func IsItemReadError(err error) bool {
	return errors.Is(err, ErrItemDecryption) || errors.Is(err, ErrItemDeserialization)
}
