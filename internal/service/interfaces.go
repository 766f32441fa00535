// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock -exclude_interfaces=StorageServiceWrapper

// StorageService exposes the remote record store of an account. It never
// looks inside encrypted envelopes.
type StorageService interface {
	GetManifest(ctx context.Context, accountID string) (models.ManifestEnvelope, error)
	GetManifestIfNewer(ctx context.Context, accountID string, version uint64) (models.ManifestEnvelope, error)
	Write(ctx context.Context, accountID string, op models.WriteOperation) (models.ManifestEnvelope, error)
	Read(ctx context.Context, accountID string, op models.ReadOperation) (models.ReadResponse, error)
}

// SyncMessageService relays notifications between devices of one account.
type SyncMessageService interface {
	Send(ctx context.Context, accountID string, msg models.SyncMessage) (models.SyncMessage, error)
	Receive(ctx context.Context, accountID, deviceID string, afterID int64) (models.SyncMessagesResponse, error)
}

type AuthService interface {
	CreateToken(ctx context.Context, accountID, deviceID string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// StorageServiceWrapper defines middleware composition for StorageService.
// Implementations wrap an existing StorageService to add behavior such as
// logging or validating.
type StorageServiceWrapper interface {
	Wrap(StorageService) StorageService // returns a decorated StorageService applying additional behavior
}
