// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// mergeManifest applies the records of a newer remote manifest to local
// state. State is saved once, after every batch has merged, so a failed
// merge keeps only the bumped conflict counter. With backupAfter set the
// caller retries a backup right after, so the consecutive conflict counter
// is left in place.
func (o *syncOperations) mergeManifest(ctx context.Context, manifest models.Manifest, backupAfter bool) error {
	log := logger.FromContext(ctx)

	st, err := o.states.Load(ctx)
	if err != nil {
		return err
	}

	st.ConsecutiveConflicts++
	if st.ConsecutiveConflicts > o.cfg.MaxConsecutiveConflicts {
		st.ConsecutiveConflicts = 0
		if err = o.states.Save(ctx, st); err != nil {
			return err
		}
		return ErrTooManyConsecutiveConflicts
	}
	if err = o.states.Save(ctx, st); err != nil {
		return err
	}

	remote := manifest.IdentifierSet()
	candidates := remote.Subtract(models.NewIdentifierSet(st.AllIdentifiers()...))
	for _, id := range st.knownTypeUnknownIdentifiers() {
		if remote.Contains(id) {
			candidates.Add(id)
		}
	}

	if err = o.mergeAccountRecord(ctx, &st, manifest); err != nil {
		return o.recoverUnreadableItems(ctx, manifest, err)
	}

	st.retainUnknownIdentifiers(remote)

	pending := make([]models.StorageIdentifier, 0, len(candidates))
	for _, id := range candidates.Slice() {
		if id.Type != models.RecordTypeAccount {
			pending = append(pending, id)
		}
	}

	batchSize := o.cfg.MergeBatchSize()
	if batchSize <= 0 {
		batchSize = len(pending)
	}

	merged := 0
	var deferred []models.StorageItem
	for start := 0; start < len(pending); start += batchSize {
		batch := pending[start:min(start+batchSize, len(pending))]

		items, err := o.remote.FetchItems(ctx, batch, manifest)
		if err != nil {
			return o.recoverUnreadableItems(ctx, manifest, err)
		}

		for _, item := range items {
			if u, ok := o.updaters.owner(item); ok && u.shouldDefer(item) {
				deferred = append(deferred, item)
				continue
			}
			if err = o.mergeItem(ctx, &st, item); err != nil {
				return err
			}
			merged++
		}
	}

	// records with weaker identity go last so they attach to entities the
	// firmer records already created
	for _, item := range deferred {
		if err = o.mergeItem(ctx, &st, item); err != nil {
			return err
		}
		merged++
	}

	st.ManifestVersion = manifest.Version
	st.ManifestRecordIkm = manifest.RecordIkm
	st.RefetchLatestManifest = false
	st.dropKnownTypeUnknownIdentifiers()
	st.InvalidIdentifiers = remote.Subtract(models.NewIdentifierSet(st.AllIdentifiers()...)).Slice()

	orphans := 0
	for _, u := range o.updaters.all() {
		n, err := u.markOrphans(ctx, &st, remote)
		if err != nil {
			return err
		}
		orphans += n
	}

	if !backupAfter {
		st.ConsecutiveConflicts = 0
	}
	if err = o.states.Save(ctx, st); err != nil {
		return err
	}

	o.telemetry.cntMerged.Add(ctx, int64(merged))
	log.Info().
		Uint64("version", manifest.Version).
		Int("merged", merged).
		Int("invalid", len(st.InvalidIdentifiers)).
		Int("orphans", orphans).
		Msg("merged remote manifest")
	return nil
}

// mergeAccountRecord merges the account record of manifest before any other
// record, since contacts are matched against the local user.
func (o *syncOperations) mergeAccountRecord(ctx context.Context, st *State, manifest models.Manifest) error {
	var remoteID *models.StorageIdentifier
	for _, id := range manifest.Identifiers {
		if id.Type == models.RecordTypeAccount {
			remoteID = &id
			break
		}
	}

	if remoteID == nil {
		st.Account.Change = ChangeStateUpdated
		return nil
	}
	if st.Account.Identifier != nil && st.Account.Identifier.Equal(*remoteID) {
		return nil
	}

	items, err := o.remote.FetchItems(ctx, []models.StorageIdentifier{*remoteID}, manifest)
	if err != nil {
		return err
	}
	for _, item := range items {
		if o.updaters.account.owns(item) {
			return o.updaters.account.merge(ctx, st, item)
		}
	}

	st.Account.Change = ChangeStateUpdated
	return nil
}

// mergeItem hands item to the updater of its record kind. Items nobody
// understands are remembered so they survive later manifest writes.
func (o *syncOperations) mergeItem(ctx context.Context, st *State, item models.StorageItem) error {
	if item.Record.Account != nil {
		logger.FromContext(ctx).Warn().Stringer("identifier", item.Identifier).Msg("skipping extra account record")
		return nil
	}

	u, ok := o.updaters.owner(item)
	if !ok {
		st.addUnknownIdentifier(item.Identifier)
		return nil
	}
	return u.merge(ctx, st, item)
}
