// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

const recordIkmMigrationMaxBackoff = time.Minute

// RecordIkmMigrator moves the primary device to manifests carrying a
// recordIkm. Once capable, the device forces a rotation so that the seed is
// generated, written to the manifest and announced to the other devices.
type RecordIkmMigrator struct {
	manager    *Manager
	capability RecordIkmCapabilityStore
	states     StateStore
	app        config.ClientApp
	baseDelay  time.Duration
	logger     *logger.Logger
}

// NewRecordIkmMigrator builds the migrator of one device.
func NewRecordIkmMigrator(manager *Manager, capability RecordIkmCapabilityStore, states StateStore, app config.ClientApp, cfg config.ClientSync, logger *logger.Logger) *RecordIkmMigrator {
	return &RecordIkmMigrator{
		manager:    manager,
		capability: capability,
		states:     states,
		app:        app,
		baseDelay:  cfg.RetryBaseDelay,
		logger:     logger,
	}
}

// Migrate runs the migration until it succeeds or ctx ends. It is a no-op
// on linked devices and once the manifest has a recordIkm.
func (r *RecordIkmMigrator) Migrate(ctx context.Context) error {
	if !r.app.PrimaryDevice {
		return nil
	}

	base := r.baseDelay
	if base <= 0 {
		base = time.Second
	}
	backoff := retry.WithCappedDuration(recordIkmMigrationMaxBackoff, retry.NewExponential(base))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.migrate(ctx)
		if err == nil || errors.Is(err, ErrManagerClosed) {
			return err
		}
		r.logger.Err(err).Str("func", "*RecordIkmMigrator.Migrate").Msg("recordIkm migration failed, retrying")
		return retry.RetryableError(err)
	})
}

func (r *RecordIkmMigrator) migrate(ctx context.Context) error {
	// the rotation rewrites the manifest from local state, which must hold
	// the latest remote manifest first
	if err := r.manager.RequestRestoreOrCreate().Wait(ctx); err != nil {
		return fmt.Errorf("restore before rotation: %w", err)
	}

	st, err := r.states.Load(ctx)
	if err != nil {
		return err
	}
	if len(st.ManifestRecordIkm) > 0 {
		return nil
	}
	if st.ManifestVersion == 0 {
		return ErrManifestNotRestored
	}

	capable, err := r.capability.IsRecordIkmCapable(ctx)
	if err != nil {
		return err
	}

	mode := RotationPreservingRecordsIfPossible
	if !capable {
		if err = r.capability.SetRecordIkmCapable(ctx); err != nil {
			return err
		}
		mode = RotationAlsoRotatingRecords
	}

	r.logger.Info().Stringer("mode", mode).Msg("rotating manifest to introduce a recordIkm")
	if err = r.manager.RequestManifestRotation(mode).Wait(ctx); err != nil {
		return err
	}

	st, err = r.states.Load(ctx)
	if err != nil {
		return err
	}
	if len(st.ManifestRecordIkm) == 0 {
		return ErrRecordIkmNotWritten
	}
	return nil
}
