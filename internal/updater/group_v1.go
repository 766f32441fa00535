// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/models"
)

// GroupV1Updater handles legacy groups. They are no longer stored locally,
// so remote records are reported invalid and purged on the next write.
type GroupV1Updater struct{}

func NewGroupV1Updater() *GroupV1Updater {
	return &GroupV1Updater{}
}

func (GroupV1Updater) LocalIDs(context.Context) ([]models.GroupV1ID, error) {
	return nil, nil
}

func (GroupV1Updater) BuildRecord(context.Context, models.GroupV1ID, models.UnknownFields) (models.GroupV1Record, bool, error) {
	return models.GroupV1Record{}, false, nil
}

func (GroupV1Updater) MergeRecord(context.Context, models.GroupV1Record) (service.MergeResult[models.GroupV1ID], error) {
	return service.InvalidRecord[models.GroupV1ID](), nil
}

func (GroupV1Updater) UnknownFields(record models.GroupV1Record) models.UnknownFields {
	return record.Unknown
}

func (GroupV1Updater) ShouldReaddOrphan(context.Context, models.GroupV1ID) (bool, error) {
	return false, nil
}

func (GroupV1Updater) ShouldDeferMerge(models.GroupV1Record) bool {
	return false
}
