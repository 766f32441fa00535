// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

type storageService struct {
	storageRepository store.StorageRepository

	logger *logger.Logger
}

func NewStorageService(storageRepository store.StorageRepository, logger *logger.Logger) StorageService {
	return &storageService{
		storageRepository: storageRepository,
		logger:            logger,
	}
}

func (s *storageService) GetManifest(ctx context.Context, accountID string) (models.ManifestEnvelope, error) {
	if accountID == "" {
		return models.ManifestEnvelope{}, ErrNoAccountProvided
	}
	return s.storageRepository.GetManifest(ctx, accountID)
}

func (s *storageService) GetManifestIfNewer(ctx context.Context, accountID string, version uint64) (models.ManifestEnvelope, error) {
	if accountID == "" {
		return models.ManifestEnvelope{}, ErrNoAccountProvided
	}
	return s.storageRepository.GetManifestIfNewer(ctx, accountID, version)
}

// Write applies op as one compare-and-swap step. A conflicting write returns
// the stored manifest together with store.ErrVersionConflict so the caller
// can merge against it.
func (s *storageService) Write(ctx context.Context, accountID string, op models.WriteOperation) (models.ManifestEnvelope, error) {
	log := logger.FromContext(ctx)

	if accountID == "" {
		return models.ManifestEnvelope{}, ErrNoAccountProvided
	}

	current, err := s.storageRepository.Write(ctx, accountID, op)
	if errors.Is(err, store.ErrVersionConflict) {
		return current, err
	}
	if err != nil {
		log.Err(err).
			Str("func", "*storageService.Write").
			Str("account_id", accountID).
			Uint64("version", op.Manifest.Version).
			Msg("storage write failed")
		return models.ManifestEnvelope{}, fmt.Errorf("storage write failed: %w", err)
	}

	log.Debug().
		Str("account_id", accountID).
		Uint64("version", op.Manifest.Version).
		Int("inserted", len(op.InsertItems)).
		Int("deleted", len(op.DeleteKeys)).
		Bool("delete_all", op.DeleteAll).
		Msg("manifest written")

	return op.Manifest, nil
}

func (s *storageService) Read(ctx context.Context, accountID string, op models.ReadOperation) (models.ReadResponse, error) {
	if accountID == "" {
		return models.ReadResponse{}, ErrNoAccountProvided
	}

	items, err := s.storageRepository.ReadItems(ctx, accountID, op.ReadKeys)
	if err != nil {
		return models.ReadResponse{}, fmt.Errorf("reading items failed: %w", err)
	}
	if items == nil {
		items = []models.ItemEnvelope{}
	}

	return models.ReadResponse{Items: items}, nil
}
