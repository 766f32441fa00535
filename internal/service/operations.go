// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// OperationsDeps are the collaborators of the sync operations.
type OperationsDeps struct {
	Remote         adapter.RemoteStore
	Messenger      adapter.SyncMessenger
	Keys           KeyStore
	Capability     RecordIkmCapabilityStore
	States         StateStore
	KV             store.KeyValueStore
	LocalRecipient LocalRecipientResolver
	Updaters       RecordUpdaters
	// GenerateRecordIkm returns a fresh record key seed.
	GenerateRecordIkm func() ([]byte, error)
}

// syncOperations implements [Operations]. Every exported method loads the
// state, works on its private copy and saves it back; the [Manager]
// guarantees that no two of them overlap.
type syncOperations struct {
	remote         adapter.RemoteStore
	messenger      adapter.SyncMessenger
	keys           KeyStore
	capability     RecordIkmCapabilityStore
	states         StateStore
	kv             store.KeyValueStore
	localRecipient LocalRecipientResolver
	updaters       updaterSet
	newRecordIkm   func() ([]byte, error)

	cfg       config.ClientSync
	app       config.ClientApp
	telemetry *syncTelemetry
	logger    *logger.Logger
}

// NewOperations wires the sync operations of one device.
func NewOperations(deps OperationsDeps, cfg config.ClientSync, app config.ClientApp, logger *logger.Logger) Operations {
	return &syncOperations{
		remote:         deps.Remote,
		messenger:      deps.Messenger,
		keys:           deps.Keys,
		capability:     deps.Capability,
		states:         deps.States,
		kv:             deps.KV,
		localRecipient: deps.LocalRecipient,
		updaters:       newUpdaterSet(deps.Updaters),
		newRecordIkm:   deps.GenerateRecordIkm,
		cfg:            cfg,
		app:            app,
		telemetry:      newSyncTelemetry(),
		logger:         logger,
	}
}

// ── runner ───────────────────────────────────────────────────────────────────

// run executes fn under a span, the storage key gate and the retry policy.
func (o *syncOperations) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx = o.logger.With().Str("operation", operation).Logger().WithContext(ctx)
	ctx, span := o.telemetry.start(ctx, operation)

	err := withRetry(ctx, o.cfg.RetryAttempts, o.cfg.RetryBaseDelay, func(ctx context.Context) error {
		if _, err := o.keys.StorageKey(ctx); err != nil {
			if errors.Is(err, adapter.ErrStorageKeyMissing) {
				logger.FromContext(ctx).Info().Msg("no storage key, skipping sync operation")
				return nil
			}
			return err
		}
		return fn(ctx)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*syncOperations.run").Msg("sync operation failed")
	}

	o.telemetry.finish(ctx, span, operation, err)
	return err
}

// withRetry runs fn up to attempts times with exponential backoff. Hard
// errors end the loop immediately.
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = time.Millisecond
	}

	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || isHardError(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

// ── operations ───────────────────────────────────────────────────────────────

func (o *syncOperations) Backup(ctx context.Context) error {
	return o.run(ctx, "backup", o.backupPendingChanges)
}

func (o *syncOperations) RestoreOrCreate(ctx context.Context) error {
	return o.run(ctx, "restore_or_create", o.restoreOrCreate)
}

func (o *syncOperations) RotateManifest(ctx context.Context, mode RotationMode) error {
	return o.run(ctx, "rotate_manifest", func(ctx context.Context) error {
		return o.rotateManifest(ctx, mode)
	})
}

func (o *syncOperations) CleanUp(ctx context.Context) error {
	return o.run(ctx, "clean_up", o.cleanUp)
}

func (o *syncOperations) FlushPendingMutations(ctx context.Context, mutations []PendingMutation) error {
	if len(mutations) == 0 {
		return nil
	}

	st, err := o.states.Load(ctx)
	if err != nil {
		return err
	}

	mutations, err = o.normalizePendingMutations(ctx, mutations)
	if err != nil {
		return err
	}

	for _, m := range mutations {
		u, ok := o.updaters.forType(m.Kind)
		if !ok {
			logger.FromContext(ctx).Warn().Stringer("kind", m.Kind).Msg("dropping mutation of unsupported record kind")
			continue
		}
		u.markUpdated(&st, m.LocalID)
	}

	return o.states.Save(ctx, st)
}

// normalizePendingMutations redirects mutations of the local user's own
// recipient to the account record.
func (o *syncOperations) normalizePendingMutations(ctx context.Context, mutations []PendingMutation) ([]PendingMutation, error) {
	self, ok, err := o.localRecipient.LocalRecipientID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve local recipient: %w", err)
	}
	if !ok {
		return mutations, nil
	}

	out := make([]PendingMutation, 0, len(mutations))
	for _, m := range mutations {
		if m.Kind == models.RecordTypeContact && models.RecipientID(m.LocalID) == self {
			m = PendingMutation{Kind: models.RecordTypeAccount}
		}
		out = append(out, m)
	}
	return out, nil
}

func (o *syncOperations) ResetLocalState(ctx context.Context) error {
	if err := o.states.Reset(ctx); err != nil {
		return err
	}
	if err := o.kv.Delete(ctx, migrationVersionKey); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return fmt.Errorf("reset migration version: %w", err)
	}
	return nil
}

func (o *syncOperations) HasPendingChanges(ctx context.Context) (bool, error) {
	st, err := o.states.Load(ctx)
	if err != nil {
		return false, err
	}
	return st.HasPendingChanges(), nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// notifyPeers asks the other devices to fetch the manifest just written.
// Delivery failures are logged only.
func (o *syncOperations) notifyPeers(ctx context.Context) {
	err := o.messenger.Send(ctx, models.SyncMessage{Type: models.SyncMessageFetchLatestManifest})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*syncOperations.notifyPeers").Msg("failed to send fetch latest manifest message")
	}
}

// requestKeys drops the rejected storage key and asks the primary device
// for a new one.
func (o *syncOperations) requestKeys(ctx context.Context) error {
	if err := o.keys.ClearStorageKey(ctx); err != nil {
		return fmt.Errorf("clear storage key: %w", err)
	}
	if err := o.messenger.Send(ctx, models.SyncMessage{Type: models.SyncMessageRequestKeys}); err != nil {
		return fmt.Errorf("request keys: %w", err)
	}
	return nil
}

func (o *syncOperations) isPrimary() bool {
	return o.app.PrimaryDevice
}
