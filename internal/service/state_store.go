// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
)

// Keys of the client key-value store owned by the sync engine.
const (
	stateKey            = "storage_service.state"
	storageKeyKey       = "storage_service.storage_key"
	recordIkmCapableKey = "storage_service.record_ikm_capable"
	migrationVersionKey = "storage_service.migration_version"
	syncCursorKey       = "storage_service.sync_message_cursor"
)

type kvStateStore struct {
	kv store.KeyValueStore
}

// NewStateStore returns a [StateStore] persisting the state under a single
// key of kv.
func NewStateStore(kv store.KeyValueStore) StateStore {
	return &kvStateStore{kv: kv}
}

func (s *kvStateStore) Load(ctx context.Context) (State, error) {
	data, err := s.kv.Get(ctx, stateKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load sync state: %w", err)
	}

	st, err := decodeState(data)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*kvStateStore.Load").Msg("persisted sync state is unreadable")
		return State{}, err
	}
	return st, nil
}

func (s *kvStateStore) Save(ctx context.Context, st State) error {
	data, err := encodeState(st)
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}
	if err = s.kv.Set(ctx, stateKey, data); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}

func (s *kvStateStore) Reset(ctx context.Context) error {
	if err := s.kv.Delete(ctx, stateKey); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return fmt.Errorf("reset sync state: %w", err)
	}
	return nil
}

// DeviceKeyStore keeps the storage key and the recordIkm capability flag in
// the key-value store. It implements [KeyStore], [RecordIkmCapabilityStore]
// and adapter.KeyProvider.
type DeviceKeyStore struct {
	kv store.KeyValueStore
}

// NewDeviceKeyStore returns a [DeviceKeyStore] over kv.
func NewDeviceKeyStore(kv store.KeyValueStore) *DeviceKeyStore {
	return &DeviceKeyStore{kv: kv}
}

func (k *DeviceKeyStore) StorageKey(ctx context.Context) ([]byte, error) {
	key, err := k.kv.Get(ctx, storageKeyKey)
	if errors.Is(err, store.ErrKeyNotFound) || (err == nil && len(key) == 0) {
		return nil, adapter.ErrStorageKeyMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read storage key: %w", err)
	}
	return key, nil
}

func (k *DeviceKeyStore) SetStorageKey(ctx context.Context, key []byte) error {
	return k.kv.Set(ctx, storageKeyKey, key)
}

func (k *DeviceKeyStore) ClearStorageKey(ctx context.Context) error {
	if err := k.kv.Delete(ctx, storageKeyKey); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return err
	}
	return nil
}

func (k *DeviceKeyStore) IsRecordIkmCapable(ctx context.Context) (bool, error) {
	value, err := k.kv.Get(ctx, recordIkmCapableKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(value) == 1 && value[0] == 1, nil
}

func (k *DeviceKeyStore) SetRecordIkmCapable(ctx context.Context) error {
	return k.kv.Set(ctx, recordIkmCapableKey, []byte{1})
}

// EnsureStorageKey stores derive() as the storage key unless a key is
// already present. It reports whether a new key was stored.
func (k *DeviceKeyStore) EnsureStorageKey(ctx context.Context, derive func() []byte) (bool, error) {
	_, err := k.StorageKey(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, adapter.ErrStorageKeyMissing) {
		return false, err
	}
	if err = k.SetStorageKey(ctx, derive()); err != nil {
		return false, fmt.Errorf("store storage key: %w", err)
	}
	return true, nil
}
