// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// levelDBKeyValueStore is a [KeyValueStore] backed by a LevelDB directory.
// Writes are synced to disk before they return.
type levelDBKeyValueStore struct {
	db *leveldb.DB
}

// NewLevelDBKeyValueStore opens (or creates) the LevelDB database at path.
func NewLevelDBKeyValueStore(path string) (KeyValueStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("error opening leveldb at %s: %w", path, err)
	}
	return &levelDBKeyValueStore{db: db}, nil
}

func (l *levelDBKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb get %s: %w", key, err)
	}
	return value, nil
}

func (l *levelDBKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	if err := l.db.Put([]byte(key), value, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("leveldb put %s: %w", key, err)
	}
	return nil
}

func (l *levelDBKeyValueStore) Delete(_ context.Context, key string) error {
	if err := l.db.Delete([]byte(key), &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("leveldb delete %s: %w", key, err)
	}
	return nil
}

func (l *levelDBKeyValueStore) Close() error {
	return l.db.Close()
}
