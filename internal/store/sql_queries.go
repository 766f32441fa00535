// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/models"
)

const (
	manifestsTable    = "storage_manifests"
	itemsTable        = "storage_items"
	syncMessagesTable = "sync_messages"
	kvTable           = "kv_store"
	entitiesTable     = "local_entities"

	// itemsChunkSize bounds the number of rows per statement so that large
	// writes stay under the bind parameter limits of both drivers.
	itemsChunkSize = 500
)

func buildSelectManifestQuery(b sq.StatementBuilderType, dialect, accountID string, forUpdate bool) (string, []any, error) {
	q := b.Select("version", "value").
		From(manifestsTable).
		Where(sq.Eq{"account_id": accountID})
	if forUpdate && dialect == config.DriverPostgres {
		q = q.Suffix("FOR UPDATE")
	}
	return q.ToSql()
}

func buildUpsertManifestQuery(b sq.StatementBuilderType, accountID string, manifest models.ManifestEnvelope) (string, []any, error) {
	return b.Insert(manifestsTable).
		Columns("account_id", "version", "value", "updated_at").
		Values(accountID, manifest.Version, manifest.Value, sq.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT (account_id) DO UPDATE SET version = excluded.version, value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
}

func buildDeleteAllItemsQuery(b sq.StatementBuilderType, accountID string) (string, []any, error) {
	return b.Delete(itemsTable).
		Where(sq.Eq{"account_id": accountID}).
		ToSql()
}

func buildDeleteItemsQuery(b sq.StatementBuilderType, accountID string, keys [][]byte) (string, []any, error) {
	return b.Delete(itemsTable).
		Where(sq.Eq{"account_id": accountID}).
		Where(sq.Eq{"item_key": keys}).
		ToSql()
}

func buildUpsertItemsQuery(b sq.StatementBuilderType, accountID string, items []models.ItemEnvelope) (string, []any, error) {
	q := b.Insert(itemsTable).Columns("account_id", "item_key", "value")
	for _, item := range items {
		q = q.Values(accountID, item.Key, item.Value)
	}
	return q.Suffix("ON CONFLICT (account_id, item_key) DO UPDATE SET value = excluded.value").ToSql()
}

func buildSelectItemsQuery(b sq.StatementBuilderType, accountID string, keys [][]byte) (string, []any, error) {
	return b.Select("item_key", "value").
		From(itemsTable).
		Where(sq.Eq{"account_id": accountID}).
		Where(sq.Eq{"item_key": keys}).
		ToSql()
}

func buildInsertSyncMessageQuery(b sq.StatementBuilderType, accountID string, msg models.SyncMessage) (string, []any, error) {
	return b.Insert(syncMessagesTable).
		Columns("account_id", "source_device", "type", "payload").
		Values(accountID, msg.SourceDevice, string(msg.Type), msg.Payload).
		Suffix("RETURNING id, created_at").
		ToSql()
}

func buildListSyncMessagesQuery(b sq.StatementBuilderType, accountID, deviceID string, afterID int64, limit uint64) (string, []any, error) {
	return b.Select("id", "source_device", "type", "payload", "created_at").
		From(syncMessagesTable).
		Where(sq.Eq{"account_id": accountID}).
		Where(sq.NotEq{"source_device": deviceID}).
		Where(sq.Gt{"id": afterID}).
		OrderBy("id ASC").
		Limit(limit).
		ToSql()
}

// chunks splits s into consecutive slices of at most size elements.
func chunks[T any](s []T, size int) [][]T {
	out := make([][]T, 0, len(s)/size+1)
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}
