// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

// restoreOrCreate merges a newer remote manifest into local state. When the
// account has no manifest yet the primary device creates the first one.
func (o *syncOperations) restoreOrCreate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	st, err := o.states.Load(ctx)
	if err != nil {
		return err
	}

	var greaterThan *uint64
	if !st.RefetchLatestManifest && st.ManifestVersion > 0 {
		version := st.ManifestVersion
		greaterThan = &version
	}

	result, err := o.remote.FetchManifest(ctx, greaterThan)
	if err != nil {
		var readErr *adapter.ManifestReadError
		if errors.As(err, &readErr) {
			return o.recoverUnreadableManifest(ctx, readErr)
		}
		return fmt.Errorf("fetch manifest: %w", err)
	}

	switch result.Status {
	case adapter.ManifestNoExisting:
		if !o.isPrimary() {
			log.Info().Msg("no remote manifest yet, waiting for the primary device")
			return nil
		}
		log.Info().Msg("no remote manifest, creating the first one")
		return o.createNewManifest(ctx, 1)

	case adapter.ManifestNoNewer:
		log.Debug().Uint64("version", st.ManifestVersion).Msg("local state is up to date")
		return nil

	default:
		return o.mergeManifest(ctx, result.Manifest, false)
	}
}
