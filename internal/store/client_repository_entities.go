// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// Entity kinds stored in the local_entities table.
const (
	kindAccount          = "account"
	kindRecipient        = "recipient"
	kindGroupV2          = "group_v2"
	kindDistributionList = "distribution_list"
	kindCallLink         = "call_link"

	accountEntityID = "self"
)

// entityRepository stores entities of one kind as JSON bodies keyed by id.
type entityRepository[K ~string, T any] struct {
	*DB
	kind string
	idOf func(T) K
}

func newEntityRepository[K ~string, T any](db *DB, kind string, idOf func(T) K) *entityRepository[K, T] {
	return &entityRepository[K, T]{DB: db, kind: kind, idOf: idOf}
}

// NewRecipientRepository constructs the local recipient repository.
func NewRecipientRepository(db *DB) RecipientRepository {
	return newEntityRepository(db, kindRecipient, func(r models.Recipient) models.RecipientID { return r.ID })
}

// NewGroupRepository constructs the local group repository.
func NewGroupRepository(db *DB) GroupRepository {
	return newEntityRepository(db, kindGroupV2, func(g models.GroupV2) models.GroupMasterKey { return g.MasterKey })
}

// NewDistributionListRepository constructs the local distribution list repository.
func NewDistributionListRepository(db *DB) DistributionListRepository {
	return newEntityRepository(db, kindDistributionList, func(l models.DistributionList) models.DistributionListID { return l.ID })
}

func (r *entityRepository[K, T]) Get(ctx context.Context, id K) (T, error) {
	var zero T

	query, args, err := r.builder().Select("body").
		From(entitiesTable).
		Where(sq.Eq{"kind": r.kind, "id": string(id)}).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var body []byte
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrEntityNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*entityRepository.Get").
			Str("kind", r.kind).
			Msg("failed to select entity")
		return zero, fmt.Errorf("%w: %w", ErrExecutingQuery, r.classify(err))
	}

	var entity T
	if err = json.Unmarshal(body, &entity); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrDecodingEntity, r.kind, err)
	}
	return entity, nil
}

func (r *entityRepository[K, T]) GetAll(ctx context.Context) ([]T, error) {
	return r.Find(ctx, nil)
}

func (r *entityRepository[K, T]) IDs(ctx context.Context) ([]K, error) {
	query, args, err := r.builder().Select("id").
		From(entitiesTable).
		Where(sq.Eq{"kind": r.kind}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, r.classify(err))
	}
	defer rows.Close()

	ids := make([]K, 0, 50)
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, K(id))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return ids, nil
}

// Find loads every entity of the kind and returns the ones pred accepts. A
// nil pred accepts everything.
func (r *entityRepository[K, T]) Find(ctx context.Context, pred func(T) bool) ([]T, error) {
	query, args, err := r.builder().Select("body").
		From(entitiesTable).
		Where(sq.Eq{"kind": r.kind}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*entityRepository.Find").
			Str("kind", r.kind).
			Msg("failed to select entities")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, r.classify(err))
	}
	defer rows.Close()

	entities := make([]T, 0, 50)
	for rows.Next() {
		var body []byte
		if err = rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		var entity T
		if err = json.Unmarshal(body, &entity); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecodingEntity, r.kind, err)
		}
		if pred == nil || pred(entity) {
			entities = append(entities, entity)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return entities, nil
}

func (r *entityRepository[K, T]) Save(ctx context.Context, items ...T) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, r.classify(err))
	}
	defer tx.Rollback()

	for _, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("error encoding %s: %w", r.kind, err)
		}

		query, args, err := r.builder().Insert(entitiesTable).
			Columns("kind", "id", "body", "updated_at").
			Values(r.kind, string(r.idOf(item)), body, time.Now().UTC()).
			Suffix("ON CONFLICT (kind, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "*entityRepository.Save").
				Str("kind", r.kind).
				Msg("failed to upsert entity")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, r.classify(err))
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, r.classify(err))
	}
	return nil
}

func (r *entityRepository[K, T]) Delete(ctx context.Context, ids ...K) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, string(id))
	}

	query, args, err := r.builder().Delete(entitiesTable).
		Where(sq.Eq{"kind": r.kind}).
		Where(sq.Eq{"id": keys}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*entityRepository.Delete").
			Str("kind", r.kind).
			Int("count", len(ids)).
			Msg("failed to delete entities")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, r.classify(err))
	}
	return nil
}

// callLinkRepository adds expiry handling on top of the generic repository.
type callLinkRepository struct {
	*entityRepository[models.CallLinkRootKey, models.CallLink]
}

// NewCallLinkRepository constructs the local call link repository.
func NewCallLinkRepository(db *DB) CallLinkRepository {
	return &callLinkRepository{
		entityRepository: newEntityRepository(db, kindCallLink, func(c models.CallLink) models.CallLinkRootKey { return c.RootKey }),
	}
}

func (r *callLinkRepository) DeleteExpired(ctx context.Context, before time.Time) ([]models.CallLinkRootKey, error) {
	threshold := uint64(before.UnixMilli())
	expired, err := r.Find(ctx, func(c models.CallLink) bool {
		return c.AdminDeletedAt != 0 && c.AdminDeletedAt < threshold
	})
	if err != nil {
		return nil, err
	}

	ids := make([]models.CallLinkRootKey, 0, len(expired))
	for _, link := range expired {
		ids = append(ids, link.RootKey)
	}
	if err = r.Delete(ctx, ids...); err != nil {
		return nil, err
	}
	return ids, nil
}

// accountRepository stores the single local account row.
type accountRepository struct {
	entities *entityRepository[string, models.Account]
}

// NewAccountRepository constructs the local account repository.
func NewAccountRepository(db *DB) AccountRepository {
	return &accountRepository{
		entities: newEntityRepository(db, kindAccount, func(models.Account) string { return accountEntityID }),
	}
}

func (a *accountRepository) Get(ctx context.Context) (models.Account, error) {
	return a.entities.Get(ctx, accountEntityID)
}

func (a *accountRepository) Save(ctx context.Context, account models.Account) error {
	return a.entities.Save(ctx, account)
}
