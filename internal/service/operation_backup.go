// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// backupPendingChanges uploads every entity marked as updated in a new
// manifest version. A version conflict merges the newer remote manifest
// and tries again on top of it.
func (o *syncOperations) backupPendingChanges(ctx context.Context) error {
	log := logger.FromContext(ctx)

	for {
		st, err := o.states.Load(ctx)
		if err != nil {
			return err
		}

		hadUpdates := st.HasPendingChanges()
		changes := &recordChanges{}
		for _, u := range o.updaters.all() {
			if err = u.buildChanged(ctx, &st, changes); err != nil {
				return err
			}
		}

		if len(changes.items) == 0 && len(changes.deleted) == 0 {
			log.Debug().Msg("nothing to back up")
			if !hadUpdates && st.ConsecutiveConflicts == 0 {
				return nil
			}
			st.ConsecutiveConflicts = 0
			return o.states.Save(ctx, st)
		}

		changes.deleted = append(changes.deleted, st.takeInvalidIdentifiers()...)
		manifest := models.Manifest{
			Version:      st.ManifestVersion + 1,
			SourceDevice: o.app.DeviceID,
			RecordIkm:    st.ManifestRecordIkm,
			Identifiers:  st.AllIdentifiers(),
		}

		result, err := o.remote.UpdateManifest(ctx, adapter.UpdateManifestRequest{
			Manifest:           manifest,
			NewItems:           changes.items,
			DeletedIdentifiers: changes.deleted,
		})
		if err != nil {
			var readErr *adapter.ManifestReadError
			if errors.As(err, &readErr) {
				return o.recoverUnreadableManifest(ctx, readErr)
			}
			return fmt.Errorf("update manifest: %w", err)
		}

		if result.Conflicted() {
			o.telemetry.cntConflicts.Add(ctx, 1)
			log.Info().
				Uint64("attempted_version", manifest.Version).
				Uint64("remote_version", result.ConflictingManifest.Version).
				Msg("manifest conflict, merging remote changes")

			if err = o.mergeManifest(ctx, *result.ConflictingManifest, true); err != nil {
				return err
			}
			continue
		}

		st.ManifestVersion = manifest.Version
		st.ConsecutiveConflicts = 0
		if err = o.states.Save(ctx, st); err != nil {
			return err
		}

		o.telemetry.cntUploaded.Add(ctx, int64(len(changes.items)),
			metric.WithAttributes(attribute.String("operation", "backup")))
		log.Info().
			Uint64("version", manifest.Version).
			Int("uploaded", len(changes.items)).
			Int("deleted", len(changes.deleted)).
			Msg("backup finished")

		o.notifyPeers(ctx)
		return nil
	}
}

// recoverUnreadableManifest handles a remote manifest this device cannot
// read. The primary device replaces it; a linked device asks for keys and
// waits for them.
func (o *syncOperations) recoverUnreadableManifest(ctx context.Context, readErr *adapter.ManifestReadError) error {
	log := logger.FromContext(ctx)

	if o.isPrimary() {
		log.Warn().Err(readErr).Msg("remote manifest unreadable, recreating")
		return o.createNewManifest(ctx, readErr.Version+1)
	}

	log.Warn().Err(readErr).Msg("remote manifest unreadable, requesting keys from primary device")
	return o.requestKeys(ctx)
}

// recoverUnreadableItems handles items of manifest this device cannot read.
func (o *syncOperations) recoverUnreadableItems(ctx context.Context, manifest models.Manifest, err error) error {
	if !adapter.IsItemReadError(err) {
		return fmt.Errorf("fetch items: %w", err)
	}

	log := logger.FromContext(ctx)
	if o.isPrimary() {
		log.Warn().Err(err).Uint64("version", manifest.Version).Msg("remote items unreadable, recreating")
		return o.createNewManifest(ctx, manifest.Version+1)
	}

	log.Warn().Err(err).Msg("remote items unreadable, requesting keys from primary device")
	if reqErr := o.requestKeys(ctx); reqErr != nil {
		return reqErr
	}
	return fmt.Errorf("%w: %w", ErrKeysRequested, err)
}
