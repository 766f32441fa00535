// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

// ClientStorages groups all client-side storage repositories into a single
// value that can be passed around the service layer.
type ClientStorages struct {
	// KV is the durable key-value store holding sync state, keys and cursors.
	KV KeyValueStore

	Account           AccountRepository
	Recipients        RecipientRepository
	Groups            GroupRepository
	DistributionLists DistributionListRepository
	CallLinks         CallLinkRepository

	db *DB
}

// NewClientStorages initialises the client storage layer. It performs the
// following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Opens the key-value store selected by cfg.KV.Backend.
//  4. Wires the entity repositories to the same connection.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new client storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	var kv KeyValueStore
	switch cfg.KV.Backend {
	case config.KVBackendSQLite, "":
		kv = NewSQLiteKeyValueStore(db, logger)
	case config.KVBackendLevelDB:
		kv, err = NewLevelDBKeyValueStore(cfg.KV.Path)
		if err != nil {
			db.Close()
			return nil, err
		}
	default:
		db.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKVBackend, cfg.KV.Backend)
	}

	return newClientStorages(db, kv), nil
}

func newClientStorages(db *DB, kv KeyValueStore) *ClientStorages {
	return &ClientStorages{
		KV:                kv,
		Account:           NewAccountRepository(db),
		Recipients:        NewRecipientRepository(db),
		Groups:            NewGroupRepository(db),
		DistributionLists: NewDistributionListRepository(db),
		CallLinks:         NewCallLinkRepository(db),
		db:                db,
	}
}

// Close releases the key-value store and the database connection.
func (c *ClientStorages) Close() error {
	return errors.Join(c.KV.Close(), c.db.Close())
}
