// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_service_mock.go -package=mock

// KeyChainService owns every key used by the storage sync client. It knows
// nothing about the network or the local database.
//
// Key hierarchy:
//
//	StorageKey  = DeriveStorageKey(passphrase, salt)        (primary device only)
//	ManifestKey = ManifestKey(StorageKey, manifestVersion)
//	ItemKey     = ItemKey(StorageKey, recordIkm, identifier)
type KeyChainService interface {
	// DeriveStorageKey stretches a passphrase into a 256-bit storage key
	// with Argon2id.
	DeriveStorageKey(passphrase string, salt []byte) []byte

	// ManifestKey derives the key sealing the manifest of one version.
	ManifestKey(storageKey []byte, version uint64) ([]byte, error)

	// ItemKey derives the key sealing one record. When recordIkm is empty
	// the legacy derivation from the storage key is used.
	ItemKey(storageKey, recordIkm, identifier []byte) ([]byte, error)

	// GenerateRecordIkm returns a fresh 32-byte record key seed.
	GenerateRecordIkm() ([]byte, error)

	// Encrypt seals plaintext with AES-256-GCM. Output is nonce || ciphertext.
	Encrypt(key, plaintext []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt. Any failure wraps
	// [ErrDecryptionFailed].
	Decrypt(key, blob []byte) ([]byte, error)
}
