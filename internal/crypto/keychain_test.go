// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStorageKey_DeterministicForSameInputs(t *testing.T) {
	svc := NewKeyChainService()

	salt := bytes.Repeat([]byte{0xAB}, 16)
	k1 := svc.DeriveStorageKey("correct horse battery staple", salt)
	k2 := svc.DeriveStorageKey("correct horse battery staple", salt)
	k3 := svc.DeriveStorageKey("another passphrase", salt)

	require.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestManifestKey_DiffersPerVersion(t *testing.T) {
	svc := NewKeyChainService()
	storageKey := bytes.Repeat([]byte{1}, 32)

	v1, err := svc.ManifestKey(storageKey, 1)
	require.NoError(t, err)
	v2, err := svc.ManifestKey(storageKey, 2)
	require.NoError(t, err)
	again, err := svc.ManifestKey(storageKey, 1)
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
	assert.Equal(t, v1, again)

	_, err = svc.ManifestKey(nil, 1)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestItemKey_RecordIkmChangesDerivation(t *testing.T) {
	svc := NewKeyChainService()
	storageKey := bytes.Repeat([]byte{1}, 32)
	id := []byte("0123456789abcdef")

	legacy, err := svc.ItemKey(storageKey, nil, id)
	require.NoError(t, err)

	ikm, err := svc.GenerateRecordIkm()
	require.NoError(t, err)
	require.Len(t, ikm, 32)

	withIkm, err := svc.ItemKey(storageKey, ikm, id)
	require.NoError(t, err)
	assert.NotEqual(t, legacy, withIkm)

	// ключ не зависит от storage key, если задан recordIkm
	otherStorageKey := bytes.Repeat([]byte{2}, 32)
	same, err := svc.ItemKey(otherStorageKey, ikm, id)
	require.NoError(t, err)
	assert.Equal(t, withIkm, same)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	svc := NewKeyChainService()
	key := bytes.Repeat([]byte{7}, 32)

	blob, err := svc.Encrypt(key, []byte("manifest body"))
	require.NoError(t, err)

	plain, err := svc.Decrypt(key, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("manifest body"), plain)
}

func TestDecrypt_Failures(t *testing.T) {
	svc := NewKeyChainService()
	key := bytes.Repeat([]byte{7}, 32)
	wrongKey := bytes.Repeat([]byte{8}, 32)

	blob, err := svc.Encrypt(key, []byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		key     []byte
		blob    []byte
		wantErr error
	}{
		{name: "wrong key", key: wrongKey, blob: blob, wantErr: ErrDecryptionFailed},
		{name: "too short", key: key, blob: []byte{1, 2, 3}, wantErr: ErrDecryptionFailed},
		{name: "tampered", key: key, blob: append(append([]byte{}, blob[:len(blob)-1]...), blob[len(blob)-1]^0xFF), wantErr: ErrDecryptionFailed},
		{name: "short key", key: []byte{1}, blob: blob, wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decrypt(tt.key, tt.blob)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
