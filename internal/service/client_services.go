// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/crypto"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
)

// ClientDeps are the client-side collaborators of the sync engine.
type ClientDeps struct {
	KV             store.KeyValueStore
	Keys           *DeviceKeyStore
	Remote         adapter.RemoteStore
	Messenger      adapter.SyncMessenger
	LocalRecipient LocalRecipientResolver
	Updaters       RecordUpdaters
	KeyChain       crypto.KeyChainService
}

// ClientServices is the sync engine of one device.
type ClientServices struct {
	Manager           *Manager
	SyncMessages      *SyncMessageHandler
	RecordIkmMigrator *RecordIkmMigrator
	Keys              *DeviceKeyStore

	keyChain crypto.KeyChainService
	app      config.ClientApp
	logger   *logger.Logger
}

func NewClientServices(deps ClientDeps, cfg config.ClientConfig, logger *logger.Logger) *ClientServices {
	states := NewStateStore(deps.KV)
	ops := NewOperations(OperationsDeps{
		Remote:            deps.Remote,
		Messenger:         deps.Messenger,
		Keys:              deps.Keys,
		Capability:        deps.Keys,
		States:            states,
		KV:                deps.KV,
		LocalRecipient:    deps.LocalRecipient,
		Updaters:          deps.Updaters,
		GenerateRecordIkm: deps.KeyChain.GenerateRecordIkm,
	}, cfg.Sync, cfg.App, logger)

	manager := NewManager(ops, cfg.Sync, logger)

	return &ClientServices{
		Manager:           manager,
		SyncMessages:      NewSyncMessageHandler(manager, deps.Messenger, deps.Keys, deps.KV, cfg.App, logger),
		RecordIkmMigrator: NewRecordIkmMigrator(manager, deps.Keys, states, cfg.App, cfg.Sync, logger),
		Keys:              deps.Keys,
		keyChain:          deps.KeyChain,
		app:               cfg.App,
		logger:            logger,
	}
}

// ProvisionStorageKey derives the storage key from the configured
// passphrase on the primary device when no key is stored yet. Linked devices
// wait for the key to arrive in a sync message.
func (c *ClientServices) ProvisionStorageKey(ctx context.Context) error {
	if !c.app.PrimaryDevice || c.app.StoragePassphrase == "" {
		return nil
	}

	created, err := c.Keys.EnsureStorageKey(ctx, func() []byte {
		return c.keyChain.DeriveStorageKey(c.app.StoragePassphrase, []byte(c.app.StorageSalt))
	})
	if err != nil {
		return err
	}
	if created {
		c.logger.Info().Msg("storage key derived from passphrase")
	}
	return nil
}

// Close stops the operation scheduler.
func (c *ClientServices) Close() {
	c.Manager.Close()
}
