// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-storage-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// KeyValueStore is the durable local key-value store of a client device.
type KeyValueStore interface {
	// Get returns the value for key or [ErrKeyNotFound].
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// EntityRepository persists one kind of local entity keyed by K.
type EntityRepository[K ~string, T any] interface {
	// Get returns the entity or [ErrEntityNotFound].
	Get(ctx context.Context, id K) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	IDs(ctx context.Context) ([]K, error)
	// Find returns all entities matching pred.
	Find(ctx context.Context, pred func(T) bool) ([]T, error)
	Save(ctx context.Context, items ...T) error
	Delete(ctx context.Context, ids ...K) error
}

type (
	RecipientRepository        = EntityRepository[models.RecipientID, models.Recipient]
	GroupRepository            = EntityRepository[models.GroupMasterKey, models.GroupV2]
	DistributionListRepository = EntityRepository[models.DistributionListID, models.DistributionList]
)

// CallLinkRepository persists call links.
type CallLinkRepository interface {
	EntityRepository[models.CallLinkRootKey, models.CallLink]
	// DeleteExpired removes links an admin deleted before the given time and
	// returns their root keys.
	DeleteExpired(ctx context.Context, before time.Time) ([]models.CallLinkRootKey, error)
}

// AccountRepository persists the local account settings.
type AccountRepository interface {
	// Get returns the account or [ErrEntityNotFound] before registration.
	Get(ctx context.Context) (models.Account, error)
	Save(ctx context.Context, account models.Account) error
}
