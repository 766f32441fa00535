// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
)

// Services groups the remote store server services.
type Services struct {
	AuthService        AuthService
	StorageService     StorageService
	SyncMessageService SyncMessageService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	storageService := NewStorageValidationService().Wrap(NewStorageService(storages.StorageRepository, logger))

	return &Services{
		AuthService:        NewAuthService(cfg.App, logger),
		StorageService:     storageService,
		SyncMessageService: NewSyncMessageService(storages.SyncMessageRepository, logger),
	}
}
