// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

// Storages groups the server-side repositories.
type Storages struct {
	StorageRepository     StorageRepository
	SyncMessageRepository SyncMessageRepository

	db *DB
}

// NewStorages connects to the configured database, applies migrations and
// wires the server repositories.
func NewStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*Storages, error) {
	logger.Info().Str("driver", cfg.Driver).Msg("creating new storages...")

	db, err := NewConnect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		StorageRepository:     NewStorageRepository(db, logger),
		SyncMessageRepository: NewSyncMessageRepository(db, logger),
		db:                    db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	return s.db.Close()
}
