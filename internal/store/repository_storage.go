// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// storageRepository is the SQL implementation of [StorageRepository] over
// the storage_manifests and storage_items tables.
type storageRepository struct {
	*DB
	logger *logger.Logger
}

// NewStorageRepository constructs a [StorageRepository] backed by db.
func NewStorageRepository(db *DB, logger *logger.Logger) StorageRepository {
	logger.Debug().Msg("creating storage repository")
	return &storageRepository{
		DB:     db,
		logger: logger,
	}
}

func (s *storageRepository) GetManifest(ctx context.Context, accountID string) (models.ManifestEnvelope, error) {
	return s.selectManifest(ctx, s.DB.DB, accountID, false)
}

func (s *storageRepository) GetManifestIfNewer(ctx context.Context, accountID string, version uint64) (models.ManifestEnvelope, error) {
	manifest, err := s.selectManifest(ctx, s.DB.DB, accountID, false)
	if err != nil {
		return models.ManifestEnvelope{}, err
	}
	if manifest.Version <= version {
		return models.ManifestEnvelope{}, ErrManifestNotNewer
	}
	return manifest, nil
}

// Write applies op inside a single transaction. The stored manifest row is
// locked first so concurrent writers of one account are serialized.
func (s *storageRepository) Write(ctx context.Context, accountID string, op models.WriteOperation) (models.ManifestEnvelope, error) {
	log := logger.FromContext(ctx)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*storageRepository.Write").Msg("failed to begin transaction")
		return models.ManifestEnvelope{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, s.classify(err))
	}
	defer tx.Rollback()

	current, err := s.selectManifest(ctx, tx, accountID, true)
	switch {
	case errors.Is(err, ErrManifestNotFound):
		// first write of the account is accepted at any version
	case err != nil:
		return models.ManifestEnvelope{}, err
	case op.Manifest.Version != current.Version+1:
		log.Info().
			Str("func", "*storageRepository.Write").
			Str("account_id", accountID).
			Uint64("stored_version", current.Version).
			Uint64("write_version", op.Manifest.Version).
			Msg("manifest version conflict")
		return current, ErrVersionConflict
	}

	if op.DeleteAll {
		if err = s.exec(ctx, tx, "delete all items", func() (string, []any, error) {
			return buildDeleteAllItemsQuery(s.builder(), accountID)
		}); err != nil {
			return models.ManifestEnvelope{}, err
		}
	}

	for _, keys := range chunks(op.DeleteKeys, itemsChunkSize) {
		if err = s.exec(ctx, tx, "delete items", func() (string, []any, error) {
			return buildDeleteItemsQuery(s.builder(), accountID, keys)
		}); err != nil {
			return models.ManifestEnvelope{}, err
		}
	}

	for _, items := range chunks(op.InsertItems, itemsChunkSize) {
		if err = s.exec(ctx, tx, "insert items", func() (string, []any, error) {
			return buildUpsertItemsQuery(s.builder(), accountID, items)
		}); err != nil {
			return models.ManifestEnvelope{}, err
		}
	}

	if err = s.exec(ctx, tx, "upsert manifest", func() (string, []any, error) {
		return buildUpsertManifestQuery(s.builder(), accountID, op.Manifest)
	}); err != nil {
		return models.ManifestEnvelope{}, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*storageRepository.Write").Msg("failed to commit transaction")
		return models.ManifestEnvelope{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, s.classify(err))
	}

	log.Debug().
		Str("func", "*storageRepository.Write").
		Str("account_id", accountID).
		Uint64("version", op.Manifest.Version).
		Int("inserted", len(op.InsertItems)).
		Int("deleted", len(op.DeleteKeys)).
		Bool("delete_all", op.DeleteAll).
		Msg("storage write applied")

	return op.Manifest, nil
}

func (s *storageRepository) ReadItems(ctx context.Context, accountID string, keys [][]byte) ([]models.ItemEnvelope, error) {
	log := logger.FromContext(ctx)

	items := make([]models.ItemEnvelope, 0, len(keys))
	for _, chunk := range chunks(keys, itemsChunkSize) {
		query, args, err := buildSelectItemsQuery(s.builder(), accountID, chunk)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		rows, err := s.DB.QueryContext(ctx, query, args...)
		if err != nil {
			log.Err(err).Str("func", "*storageRepository.ReadItems").Str("account_id", accountID).Msg("failed to select items")
			return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, s.classify(err))
		}

		for rows.Next() {
			var item models.ItemEnvelope
			if err = rows.Scan(&item.Key, &item.Value); err != nil {
				rows.Close()
				return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
			}
			items = append(items, item)
		}
		if err = rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		rows.Close()
	}

	return items, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *storageRepository) selectManifest(ctx context.Context, q queryRower, accountID string, forUpdate bool) (models.ManifestEnvelope, error) {
	query, args, err := buildSelectManifestQuery(s.builder(), s.dialect, accountID, forUpdate)
	if err != nil {
		return models.ManifestEnvelope{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var manifest models.ManifestEnvelope
	err = q.QueryRowContext(ctx, query, args...).Scan(&manifest.Version, &manifest.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ManifestEnvelope{}, ErrManifestNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*storageRepository.selectManifest").
			Str("account_id", accountID).
			Msg("failed to select manifest")
		return models.ManifestEnvelope{}, fmt.Errorf("%w: %w", ErrExecutingQuery, s.classify(err))
	}
	return manifest, nil
}

func (s *storageRepository) exec(ctx context.Context, tx *sql.Tx, what string, build func() (string, []any, error)) error {
	query, args, err := build()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*storageRepository.exec").Msg("failed to " + what)
		return fmt.Errorf("%w: %s: %w", ErrExecutingStatement, what, s.classify(err))
	}
	return nil
}
