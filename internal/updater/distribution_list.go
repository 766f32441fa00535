// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// DistributionListUpdater syncs story audience lists. A deleted list stays
// behind as a tombstone so the deletion reaches every device.
type DistributionListUpdater struct {
	lists store.DistributionListRepository
}

func NewDistributionListUpdater(lists store.DistributionListRepository) *DistributionListUpdater {
	return &DistributionListUpdater{lists: lists}
}

func (u *DistributionListUpdater) LocalIDs(ctx context.Context) ([]models.DistributionListID, error) {
	return u.lists.IDs(ctx)
}

func (u *DistributionListUpdater) BuildRecord(ctx context.Context, id models.DistributionListID, unknown models.UnknownFields) (models.StoryDistributionListRecord, bool, error) {
	list, err := u.lists.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return models.StoryDistributionListRecord{}, false, nil
	}
	if err != nil {
		return models.StoryDistributionListRecord{}, false, err
	}

	identifier, err := uuid.Parse(string(list.ID))
	if err != nil {
		return models.StoryDistributionListRecord{}, false, nil
	}

	record := models.StoryDistributionListRecord{
		Identifier:         identifier[:],
		DeletedAtTimestamp: list.DeletedAt,
		Unknown:            unknown.Clone(),
	}
	if list.DeletedAt == 0 {
		record.Name = list.Name
		record.RecipientServiceIDs = slices.Clone(list.MemberACIs)
		record.AllowsReplies = list.AllowsReplies
		record.IsBlockList = list.IsBlockList
	}
	return record, true, nil
}

// MergeRecord applies the remote list. A local deletion is never undone by
// a live remote copy; the tombstone is uploaded again instead.
func (u *DistributionListUpdater) MergeRecord(ctx context.Context, record models.StoryDistributionListRecord) (service.MergeResult[models.DistributionListID], error) {
	identifier, err := uuid.FromBytes(record.Identifier)
	if err != nil {
		return service.InvalidRecord[models.DistributionListID](), nil
	}
	id := models.DistributionListID(identifier.String())

	local, err := u.lists.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrEntityNotFound):
		local = models.DistributionList{ID: id}
	case err != nil:
		return service.MergeResult[models.DistributionListID]{}, err
	}

	if local.DeletedAt != 0 {
		return service.Merged(id, record.DeletedAtTimestamp == 0), nil
	}

	if record.DeletedAtTimestamp != 0 {
		local = models.DistributionList{ID: id, DeletedAt: record.DeletedAtTimestamp}
	} else {
		local.Name = record.Name
		local.MemberACIs = slices.Clone(record.RecipientServiceIDs)
		local.AllowsReplies = record.AllowsReplies
		local.IsBlockList = record.IsBlockList
	}

	if err = u.lists.Save(ctx, local); err != nil {
		return service.MergeResult[models.DistributionListID]{}, fmt.Errorf("save distribution list: %w", err)
	}
	return service.Merged(id, false), nil
}

func (u *DistributionListUpdater) UnknownFields(record models.StoryDistributionListRecord) models.UnknownFields {
	return record.Unknown
}

// ShouldReaddOrphan lets peers drop tombstones.
func (u *DistributionListUpdater) ShouldReaddOrphan(ctx context.Context, id models.DistributionListID) (bool, error) {
	list, err := u.lists.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return list.DeletedAt == 0, nil
}

func (u *DistributionListUpdater) ShouldDeferMerge(models.StoryDistributionListRecord) bool {
	return false
}
