// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

// sqliteKeyValueStore keeps key-value pairs in the kv_store table of the
// client database.
type sqliteKeyValueStore struct {
	*DB
	logger *logger.Logger
}

// NewSQLiteKeyValueStore constructs a [KeyValueStore] sharing db with the
// entity repositories.
func NewSQLiteKeyValueStore(db *DB, logger *logger.Logger) KeyValueStore {
	return &sqliteKeyValueStore{
		DB:     db,
		logger: logger,
	}
}

func (s *sqliteKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.builder().Select("value").From(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sqliteKeyValueStore.Get").Str("key", key).Msg("failed to read value")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, s.classify(err))
	}
	return value, nil
}

func (s *sqliteKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.builder().Insert(kvTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sqliteKeyValueStore.Set").Str("key", key).Msg("failed to write value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, s.classify(err))
	}
	return nil
}

func (s *sqliteKeyValueStore) Delete(ctx context.Context, key string) error {
	query, args, err := s.builder().Delete(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sqliteKeyValueStore.Delete").Str("key", key).Msg("failed to delete value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, s.classify(err))
	}
	return nil
}

// Close is a no-op: the connection is owned by [ClientStorages].
func (s *sqliteKeyValueStore) Close() error {
	return nil
}
