// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/validators"
	"github.com/MKhiriev/go-storage-sync/models"
)

// StorageValidationService rejects structurally broken storage requests
// before they reach the repository.
type StorageValidationService struct {
	inner     StorageService
	validator validators.Validator
}

func NewStorageValidationService() StorageServiceWrapper {
	return &StorageValidationService{
		validator: validators.NewStorageValidator(),
	}
}

func (v *StorageValidationService) GetManifest(ctx context.Context, accountID string) (models.ManifestEnvelope, error) {
	return v.inner.GetManifest(ctx, accountID)
}

func (v *StorageValidationService) GetManifestIfNewer(ctx context.Context, accountID string, version uint64) (models.ManifestEnvelope, error) {
	return v.inner.GetManifestIfNewer(ctx, accountID, version)
}

func (v *StorageValidationService) Write(ctx context.Context, accountID string, op models.WriteOperation) (models.ManifestEnvelope, error) {
	if err := v.validator.Validate(ctx, op); err != nil {
		return models.ManifestEnvelope{}, fmt.Errorf("%w: error during write operation validation: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Write(ctx, accountID, op)
}

func (v *StorageValidationService) Read(ctx context.Context, accountID string, op models.ReadOperation) (models.ReadResponse, error) {
	if err := v.validator.Validate(ctx, op); err != nil {
		return models.ReadResponse{}, fmt.Errorf("%w: error during read operation validation: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Read(ctx, accountID, op)
}

func (v *StorageValidationService) Wrap(wrapper StorageService) StorageService {
	v.inner = wrapper
	return v
}
