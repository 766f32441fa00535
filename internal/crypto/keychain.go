// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	keyLen       = 32
	recordIkmLen = 32

	manifestKeyInfo   = "Manifest_"
	itemKeyInfo       = "Item_"
	recordIkmItemInfo = "StorageItem_"
)

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyChainService constructs a [KeyChainService] with the Argon2id
// parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyChainService() KeyChainService {
	return &keyChainService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  keyLen,
	}
}

// DeriveStorageKey implements [KeyChainService].
func (k *keyChainService) DeriveStorageKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		salt,
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	)
}

// ManifestKey implements [KeyChainService]. Every manifest version gets its
// own key, so rotating the manifest is just writing the next version.
func (k *keyChainService) ManifestKey(storageKey []byte, version uint64) ([]byte, error) {
	return expand(storageKey, nil, manifestKeyInfo+strconv.FormatUint(version, 10))
}

// ItemKey implements [KeyChainService].
func (k *keyChainService) ItemKey(storageKey, recordIkm, identifier []byte) ([]byte, error) {
	if len(recordIkm) > 0 {
		return expand(recordIkm, nil, recordIkmItemInfo+string(identifier))
	}
	return expand(storageKey, nil, itemKeyInfo+base64.StdEncoding.EncodeToString(identifier))
}

// GenerateRecordIkm implements [KeyChainService].
func (k *keyChainService) GenerateRecordIkm() ([]byte, error) {
	ikm := make([]byte, recordIkmLen)
	if _, err := io.ReadFull(rand.Reader, ikm); err != nil {
		return nil, err
	}
	return ikm, nil
}

// Encrypt implements [KeyChainService]. A random 12-byte nonce is prepended
// to the ciphertext: blob = nonce ‖ ciphertext.
func (k *keyChainService) Encrypt(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// Decrypt implements [KeyChainService].
func (k *keyChainService) Decrypt(key, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, keyLen, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// expand derives a 32-byte key from secret with HKDF-SHA256.
func expand(secret, salt []byte, info string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidKey)
	}
	out := make([]byte, keyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("error deriving key: %w", err)
	}
	return out, nil
}
