// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
)

// currentMigrationVersion is the number of one-off state migrations.
const currentMigrationVersion = 1

// cleanUp is the best-effort consistency sweep over local state.
func (o *syncOperations) cleanUp(ctx context.Context) error {
	log := logger.FromContext(ctx)

	st, err := o.states.Load(ctx)
	if err != nil {
		return err
	}

	if len(st.knownTypeUnknownIdentifiers()) > 0 {
		log.Info().Msg("unknown identifiers became known, refetching latest manifest")
		st.RefetchLatestManifest = true
	}

	if st.UnknownFieldLastCheckedAppVersion != o.app.Version {
		for _, u := range o.updaters.all() {
			if err = u.remergeUnknownFields(ctx, &st); err != nil {
				return err
			}
		}
		st.UnknownFieldLastCheckedAppVersion = o.app.Version
	}

	unbuildable := 0
	for _, u := range o.updaters.all() {
		n, err := u.markUnbuildable(ctx, &st)
		if err != nil {
			return err
		}
		unbuildable += n
	}
	if unbuildable > 0 {
		log.Info().Int("count", unbuildable).Msg("marked entities without a record for deletion")
	}

	migration, err := o.migrationVersion(ctx)
	if err != nil {
		return err
	}
	if migration < 1 {
		// the account record gained fields that older builds never uploaded
		st.Account.Change = ChangeStateUpdated
	}

	if err = o.states.Save(ctx, st); err != nil {
		return err
	}
	if migration < currentMigrationVersion {
		return o.setMigrationVersion(ctx, currentMigrationVersion)
	}
	return nil
}

func (o *syncOperations) migrationVersion(ctx context.Context) (int, error) {
	value, err := o.kv.Get(ctx, migrationVersionKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	version, err := strconv.Atoi(string(value))
	if err != nil {
		return 0, fmt.Errorf("%w: migration version %q", ErrCorruptState, value)
	}
	return version, nil
}

func (o *syncOperations) setMigrationVersion(ctx context.Context, version int) error {
	return o.kv.Set(ctx, migrationVersionKey, []byte(strconv.Itoa(version)))
}
