// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

var (
	// ErrDecryptionFailed is returned when a blob cannot be opened with the
	// given key (wrong key, truncated or tampered ciphertext).
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKey is returned when a key has the wrong length.
	ErrInvalidKey = errors.New("invalid key")
)
