// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func newTestSQLiteDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewConnectSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestPostgresStorageRepo(t *testing.T) (*storageRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	l := logger.Nop()
	return &storageRepository{
		DB:     &DB{DB: conn, dialect: config.DriverPostgres, errorClassificator: NewPostgresErrorClassifier(), logger: l},
		logger: l,
	}, mock
}

func writeOp(version uint64, items ...models.ItemEnvelope) models.WriteOperation {
	return models.WriteOperation{
		Manifest:    models.ManifestEnvelope{Version: version, Value: []byte{byte(version)}},
		InsertItems: items,
	}
}

// ── sqlite ────────────────────────────────────────────────────────────────────

func TestStorageRepository_SQLite_FirstWriteAnyVersion(t *testing.T) {
	repo := NewStorageRepository(newTestSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	_, err := repo.GetManifest(ctx, "acc")
	require.ErrorIs(t, err, ErrManifestNotFound)

	_, err = repo.Write(ctx, "acc", writeOp(5, models.ItemEnvelope{Key: []byte("k1"), Value: []byte("v1")}))
	require.NoError(t, err)

	manifest, err := repo.GetManifest(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), manifest.Version)
	assert.Equal(t, []byte{5}, manifest.Value)
}

func TestStorageRepository_SQLite_CompareAndSwap(t *testing.T) {
	repo := NewStorageRepository(newTestSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	_, err := repo.Write(ctx, "acc", writeOp(1))
	require.NoError(t, err)

	// версия должна быть ровно stored+1
	current, err := repo.Write(ctx, "acc", writeOp(3))
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, uint64(1), current.Version)

	current, err = repo.Write(ctx, "acc", writeOp(1))
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, uint64(1), current.Version)

	_, err = repo.Write(ctx, "acc", writeOp(2))
	require.NoError(t, err)
}

func TestStorageRepository_SQLite_ItemsInsertDeleteRead(t *testing.T) {
	repo := NewStorageRepository(newTestSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	_, err := repo.Write(ctx, "acc", writeOp(1,
		models.ItemEnvelope{Key: []byte("a"), Value: []byte("1")},
		models.ItemEnvelope{Key: []byte("b"), Value: []byte("2")},
	))
	require.NoError(t, err)

	op := writeOp(2, models.ItemEnvelope{Key: []byte("c"), Value: []byte("3")})
	op.DeleteKeys = [][]byte{[]byte("a")}
	_, err = repo.Write(ctx, "acc", op)
	require.NoError(t, err)

	items, err := repo.ReadItems(ctx, "acc", [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("missing")})
	require.NoError(t, err)
	require.Len(t, items, 2)

	got := map[string]string{}
	for _, item := range items {
		got[string(item.Key)] = string(item.Value)
	}
	assert.Equal(t, map[string]string{"b": "2", "c": "3"}, got)

	// другой аккаунт ничего не видит
	items, err = repo.ReadItems(ctx, "other", [][]byte{[]byte("b")})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStorageRepository_SQLite_DeleteAll(t *testing.T) {
	repo := NewStorageRepository(newTestSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	_, err := repo.Write(ctx, "acc", writeOp(1, models.ItemEnvelope{Key: []byte("old"), Value: []byte("x")}))
	require.NoError(t, err)

	op := writeOp(2, models.ItemEnvelope{Key: []byte("new"), Value: []byte("y")})
	op.DeleteAll = true
	_, err = repo.Write(ctx, "acc", op)
	require.NoError(t, err)

	items, err := repo.ReadItems(ctx, "acc", [][]byte{[]byte("old"), []byte("new")})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []byte("new"), items[0].Key)
}

func TestStorageRepository_SQLite_ConflictLeavesStoreUntouched(t *testing.T) {
	repo := NewStorageRepository(newTestSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	_, err := repo.Write(ctx, "acc", writeOp(1, models.ItemEnvelope{Key: []byte("a"), Value: []byte("1")}))
	require.NoError(t, err)

	op := writeOp(7, models.ItemEnvelope{Key: []byte("b"), Value: []byte("2")})
	op.DeleteAll = true
	_, err = repo.Write(ctx, "acc", op)
	require.ErrorIs(t, err, ErrVersionConflict)

	items, err := repo.ReadItems(ctx, "acc", [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []byte("a"), items[0].Key)
}

func TestStorageRepository_SQLite_GetManifestIfNewer(t *testing.T) {
	repo := NewStorageRepository(newTestSQLiteDB(t), logger.Nop())
	ctx := context.Background()

	_, err := repo.GetManifestIfNewer(ctx, "acc", 0)
	require.ErrorIs(t, err, ErrManifestNotFound)

	_, err = repo.Write(ctx, "acc", writeOp(4))
	require.NoError(t, err)

	_, err = repo.GetManifestIfNewer(ctx, "acc", 4)
	assert.ErrorIs(t, err, ErrManifestNotNewer)

	manifest, err := repo.GetManifestIfNewer(ctx, "acc", 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), manifest.Version)
}

// ── postgres (sqlmock) ────────────────────────────────────────────────────────

func TestStorageRepository_Postgres_WriteLocksManifestRow(t *testing.T) {
	repo, mock := newTestPostgresStorageRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, value FROM storage_manifests WHERE account_id = $1 FOR UPDATE")).
		WithArgs("acc").
		WillReturnRows(sqlmock.NewRows([]string{"version", "value"}).AddRow(3, []byte("m3")))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO storage_items (account_id,item_key,value) VALUES ($1,$2,$3)")).
		WithArgs("acc", []byte("k"), []byte("v")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO storage_manifests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Write(context.Background(), "acc", writeOp(4, models.ItemEnvelope{Key: []byte("k"), Value: []byte("v")}))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageRepository_Postgres_ConflictRollsBack(t *testing.T) {
	repo, mock := newTestPostgresStorageRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT version, value FROM storage_manifests").
		WillReturnRows(sqlmock.NewRows([]string{"version", "value"}).AddRow(7, []byte("m7")))
	mock.ExpectRollback()

	current, err := repo.Write(context.Background(), "acc", writeOp(6))
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, models.ManifestEnvelope{Version: 7, Value: []byte("m7")}, current)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageRepository_Postgres_SerializationFailureIsTransient(t *testing.T) {
	repo, mock := newTestPostgresStorageRepo(t)

	mock.ExpectQuery("SELECT version, value FROM storage_manifests").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})

	_, err := repo.GetManifest(context.Background(), "acc")
	require.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestStorageRepository_Postgres_UniqueViolationIsNotTransient(t *testing.T) {
	repo, mock := newTestPostgresStorageRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT version, value FROM storage_manifests").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO storage_manifests").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	mock.ExpectRollback()

	_, err := repo.Write(context.Background(), "acc", writeOp(1))
	require.ErrorIs(t, err, ErrExecutingStatement)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, pgerrcode.UniqueViolation, postgresError(err))
}

// ── queries ───────────────────────────────────────────────────────────────────

func Test_buildSelectManifestQuery_SQLiteHasNoRowLock(t *testing.T) {
	db := &DB{dialect: config.DriverSQLite}
	query, args, err := buildSelectManifestQuery(db.builder(), db.dialect, "acc", true)
	require.NoError(t, err)

	assert.NotContains(t, query, "FOR UPDATE")
	assert.Contains(t, query, "account_id = ?")
	assert.Equal(t, []any{"acc"}, args)
}

func Test_chunks(t *testing.T) {
	assert.Empty(t, chunks([]int{}, 2))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunks([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2}}, chunks([]int{1, 2}, 2))
}
