// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// createNewManifest replaces the remote store with a manifest at version
// built from every local entity. Only the primary device may do this.
func (o *syncOperations) createNewManifest(ctx context.Context, version uint64) error {
	return o.createNewManifestAttempt(ctx, version, false)
}

func (o *syncOperations) createNewManifestAttempt(ctx context.Context, version uint64, isRetry bool) error {
	log := logger.FromContext(ctx)

	if !o.isPrimary() {
		return ErrNotPrimaryDevice
	}

	st := NewState()

	capable, err := o.capability.IsRecordIkmCapable(ctx)
	if err != nil {
		return fmt.Errorf("read recordIkm capability: %w", err)
	}
	if capable {
		if st.ManifestRecordIkm, err = o.newRecordIkm(); err != nil {
			return fmt.Errorf("generate recordIkm: %w", err)
		}
	}

	changes := &recordChanges{}
	for _, u := range o.updaters.all() {
		if err = u.buildAll(ctx, &st, changes); err != nil {
			return err
		}
	}

	manifest := models.Manifest{
		Version:      version,
		SourceDevice: o.app.DeviceID,
		RecordIkm:    st.ManifestRecordIkm,
		Identifiers:  st.AllIdentifiers(),
	}

	result, err := o.remote.UpdateManifest(ctx, adapter.UpdateManifestRequest{
		Manifest:                 manifest,
		NewItems:                 changes.items,
		DeleteAllExistingRecords: version > 1 || isRetry,
	})
	if err != nil {
		var readErr *adapter.ManifestReadError
		if !errors.As(err, &readErr) {
			return fmt.Errorf("create manifest: %w", err)
		}
		if isRetry {
			return fmt.Errorf("%w: %w", ErrRepeatedCreateConflict, err)
		}
		log.Warn().Err(err).Msg("conflicting manifest unreadable, recreating on top of it")
		return o.createNewManifestAttempt(ctx, readErr.Version+1, true)
	}

	if result.Conflicted() {
		o.telemetry.cntConflicts.Add(ctx, 1)
		if isRetry {
			return ErrRepeatedCreateConflict
		}
		log.Warn().
			Uint64("attempted_version", version).
			Uint64("remote_version", result.ConflictingManifest.Version).
			Msg("manifest creation conflicted, retrying on top of the remote version")
		return o.createNewManifestAttempt(ctx, result.ConflictingManifest.Version+1, true)
	}

	st.ManifestVersion = version
	st.UnknownFieldLastCheckedAppVersion = o.app.Version
	if err = o.states.Save(ctx, st); err != nil {
		return err
	}

	o.telemetry.cntUploaded.Add(ctx, int64(len(changes.items)))
	log.Info().
		Uint64("version", version).
		Int("records", len(changes.items)).
		Bool("record_ikm", manifest.HasRecordIkm()).
		Msg("created new manifest")

	o.notifyPeers(ctx)
	return nil
}

// rotateManifest writes the next manifest version from local data.
func (o *syncOperations) rotateManifest(ctx context.Context, mode RotationMode) error {
	if !o.isPrimary() {
		return ErrNotPrimaryDevice
	}

	st, err := o.states.Load(ctx)
	if err != nil {
		return err
	}

	next := st.ManifestVersion + 1
	if mode == RotationAlsoRotatingRecords {
		return o.createNewManifest(ctx, next)
	}
	return o.rotateManifestPreservingRecords(ctx, st, next)
}

// rotateManifestPreservingRecords re-seals the current identifiers in a new
// manifest version. Records stay in place since their keys derive from the
// recordIkm, not from the storage key.
func (o *syncOperations) rotateManifestPreservingRecords(ctx context.Context, st State, version uint64) error {
	log := logger.FromContext(ctx)

	if len(st.ManifestRecordIkm) == 0 {
		log.Info().Msg("manifest has no recordIkm, rotating records too")
		return o.createNewManifest(ctx, version)
	}

	manifest := models.Manifest{
		Version:      version,
		SourceDevice: o.app.DeviceID,
		RecordIkm:    st.ManifestRecordIkm,
		Identifiers:  st.AllIdentifiers(),
	}

	result, err := o.remote.UpdateManifest(ctx, adapter.UpdateManifestRequest{Manifest: manifest})
	if err != nil {
		var readErr *adapter.ManifestReadError
		if errors.As(err, &readErr) {
			return o.createNewManifest(ctx, readErr.Version+1)
		}
		return fmt.Errorf("rotate manifest: %w", err)
	}
	if result.Conflicted() {
		o.telemetry.cntConflicts.Add(ctx, 1)
		log.Warn().Uint64("remote_version", result.ConflictingManifest.Version).Msg("rotation conflicted, recreating")
		return o.createNewManifest(ctx, result.ConflictingManifest.Version+1)
	}

	st.ManifestVersion = version
	if err = o.states.Save(ctx, st); err != nil {
		return err
	}

	log.Info().Uint64("version", version).Msg("rotated manifest")
	o.notifyPeers(ctx)
	return nil
}
