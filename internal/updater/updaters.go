// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/internal/utils"
)

// NewRecordUpdaters wires one updater per record kind to the client
// repositories.
func NewRecordUpdaters(storages *store.ClientStorages, logger *logger.Logger) service.RecordUpdaters {
	return service.RecordUpdaters{
		Account:               NewAccountUpdater(storages.Account),
		Contact:               NewContactUpdater(storages.Recipients, storages.Account, utils.NewUUIDGenerator(), logger),
		GroupV1:               NewGroupV1Updater(),
		GroupV2:               NewGroupV2Updater(storages.Groups),
		StoryDistributionList: NewDistributionListUpdater(storages.DistributionLists),
		CallLink:              NewCallLinkUpdater(storages.CallLinks),
	}
}
