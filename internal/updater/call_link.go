// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// CallLinkRootKeySize is the length of a valid call link root key.
const CallLinkRootKeySize = 16

// CallLinkUpdater syncs call links. Deleted links are kept as tombstones
// until the cleanup worker purges them.
type CallLinkUpdater struct {
	links store.CallLinkRepository
}

func NewCallLinkUpdater(links store.CallLinkRepository) *CallLinkUpdater {
	return &CallLinkUpdater{links: links}
}

func (u *CallLinkUpdater) LocalIDs(ctx context.Context) ([]models.CallLinkRootKey, error) {
	return u.links.IDs(ctx)
}

func (u *CallLinkUpdater) BuildRecord(ctx context.Context, id models.CallLinkRootKey, unknown models.UnknownFields) (models.CallLinkRecord, bool, error) {
	link, err := u.links.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return models.CallLinkRecord{}, false, nil
	}
	if err != nil {
		return models.CallLinkRecord{}, false, err
	}

	rootKey, err := hex.DecodeString(string(link.RootKey))
	if err != nil || len(rootKey) != CallLinkRootKeySize {
		return models.CallLinkRecord{}, false, nil
	}

	record := models.CallLinkRecord{
		RootKey:            rootKey,
		DeletedAtTimestamp: link.DeletedAt,
		Unknown:            unknown.Clone(),
	}
	if link.DeletedAt == 0 {
		record.AdminPasskey = link.AdminPasskey
	}
	return record, true, nil
}

func (u *CallLinkUpdater) MergeRecord(ctx context.Context, record models.CallLinkRecord) (service.MergeResult[models.CallLinkRootKey], error) {
	if len(record.RootKey) != CallLinkRootKeySize {
		return service.InvalidRecord[models.CallLinkRootKey](), nil
	}
	id := models.CallLinkRootKey(hex.EncodeToString(record.RootKey))

	local, err := u.links.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrEntityNotFound):
		local = models.CallLink{RootKey: id}
	case err != nil:
		return service.MergeResult[models.CallLinkRootKey]{}, err
	}

	if local.DeletedAt != 0 {
		return service.Merged(id, record.DeletedAtTimestamp == 0), nil
	}

	needsUpdate := false
	if record.DeletedAtTimestamp != 0 {
		local.DeletedAt = record.DeletedAtTimestamp
		local.AdminPasskey = nil
	} else {
		needsUpdate = local.IsAdmin() && !bytes.Equal(local.AdminPasskey, record.AdminPasskey)
		if !local.IsAdmin() {
			local.AdminPasskey = record.AdminPasskey
		}
	}

	if err = u.links.Save(ctx, local); err != nil {
		return service.MergeResult[models.CallLinkRootKey]{}, fmt.Errorf("save call link: %w", err)
	}
	return service.Merged(id, needsUpdate), nil
}

func (u *CallLinkUpdater) UnknownFields(record models.CallLinkRecord) models.UnknownFields {
	return record.Unknown
}

// ShouldReaddOrphan re-adds live links this device administers. Peers may
// drop deleted links and links they only joined.
func (u *CallLinkUpdater) ShouldReaddOrphan(ctx context.Context, id models.CallLinkRootKey) (bool, error) {
	link, err := u.links.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return link.DeletedAt == 0 && link.IsAdmin(), nil
}

func (u *CallLinkUpdater) ShouldDeferMerge(models.CallLinkRecord) bool {
	return false
}
