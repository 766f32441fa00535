// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// GroupMasterKeySize is the length of a valid group master key.
const GroupMasterKeySize = 32

// GroupV2Updater syncs groups keyed by their master key.
type GroupV2Updater struct {
	groups store.GroupRepository
}

func NewGroupV2Updater(groups store.GroupRepository) *GroupV2Updater {
	return &GroupV2Updater{groups: groups}
}

func (u *GroupV2Updater) LocalIDs(ctx context.Context) ([]models.GroupMasterKey, error) {
	return u.groups.IDs(ctx)
}

func (u *GroupV2Updater) BuildRecord(ctx context.Context, id models.GroupMasterKey, unknown models.UnknownFields) (models.GroupV2Record, bool, error) {
	group, err := u.groups.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return models.GroupV2Record{}, false, nil
	}
	if err != nil {
		return models.GroupV2Record{}, false, err
	}

	masterKey, err := hex.DecodeString(string(group.MasterKey))
	if err != nil || len(masterKey) != GroupMasterKeySize {
		return models.GroupV2Record{}, false, nil
	}

	return models.GroupV2Record{
		MasterKey:                    masterKey,
		Blocked:                      group.Blocked,
		Whitelisted:                  group.Whitelisted,
		Archived:                     group.Archived,
		MarkedUnread:                 group.MarkedUnread,
		DontNotifyForMentionsIfMuted: group.DontNotifyForMentionsIfMuted,
		MutedUntilTimestamp:          group.MutedUntil,
		Unknown:                      unknown.Clone(),
	}, true, nil
}

func (u *GroupV2Updater) MergeRecord(ctx context.Context, record models.GroupV2Record) (service.MergeResult[models.GroupMasterKey], error) {
	if len(record.MasterKey) != GroupMasterKeySize {
		return service.InvalidRecord[models.GroupMasterKey](), nil
	}

	group := models.GroupV2{
		MasterKey:                    models.GroupMasterKey(hex.EncodeToString(record.MasterKey)),
		Blocked:                      record.Blocked,
		Whitelisted:                  record.Whitelisted,
		Archived:                     record.Archived,
		MarkedUnread:                 record.MarkedUnread,
		DontNotifyForMentionsIfMuted: record.DontNotifyForMentionsIfMuted,
		MutedUntil:                   record.MutedUntilTimestamp,
	}
	if err := u.groups.Save(ctx, group); err != nil {
		return service.MergeResult[models.GroupMasterKey]{}, fmt.Errorf("save group: %w", err)
	}
	return service.Merged(group.MasterKey, false), nil
}

func (u *GroupV2Updater) UnknownFields(record models.GroupV2Record) models.UnknownFields {
	return record.Unknown
}

func (u *GroupV2Updater) ShouldReaddOrphan(context.Context, models.GroupMasterKey) (bool, error) {
	return true, nil
}

func (u *GroupV2Updater) ShouldDeferMerge(models.GroupV2Record) bool {
	return false
}
