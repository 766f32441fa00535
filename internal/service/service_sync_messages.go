// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/internal/validators"
	"github.com/MKhiriev/go-storage-sync/models"
)

// syncMessagesPageSize bounds one Receive response.
const syncMessagesPageSize = 100

type syncMessageService struct {
	syncMessageRepository store.SyncMessageRepository
	validator             validators.Validator

	logger *logger.Logger
}

func NewSyncMessageService(syncMessageRepository store.SyncMessageRepository, logger *logger.Logger) SyncMessageService {
	return &syncMessageService{
		syncMessageRepository: syncMessageRepository,
		validator:             validators.NewStorageValidator(),
		logger:                logger,
	}
}

// Send stores msg for the other devices of the account. SourceDevice must
// already be set by the caller from the authenticated device.
func (s *syncMessageService) Send(ctx context.Context, accountID string, msg models.SyncMessage) (models.SyncMessage, error) {
	log := logger.FromContext(ctx)

	if accountID == "" {
		return models.SyncMessage{}, ErrNoAccountProvided
	}
	if msg.SourceDevice == "" {
		return models.SyncMessage{}, ErrNoDeviceProvided
	}
	if err := s.validator.Validate(ctx, msg); err != nil {
		log.Err(err).Str("type", string(msg.Type)).Msg("invalid sync message")
		return models.SyncMessage{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	stored, err := s.syncMessageRepository.Append(ctx, accountID, msg)
	if err != nil {
		log.Err(err).Str("func", "*syncMessageService.Send").Msg("storing sync message failed")
		return models.SyncMessage{}, fmt.Errorf("storing sync message failed: %w", err)
	}

	return stored, nil
}

// Receive returns up to one page of messages newer than afterID sent by
// other devices of the account.
func (s *syncMessageService) Receive(ctx context.Context, accountID, deviceID string, afterID int64) (models.SyncMessagesResponse, error) {
	if accountID == "" {
		return models.SyncMessagesResponse{}, ErrNoAccountProvided
	}
	if deviceID == "" {
		return models.SyncMessagesResponse{}, ErrNoDeviceProvided
	}

	messages, err := s.syncMessageRepository.ListAfter(ctx, accountID, deviceID, afterID, syncMessagesPageSize)
	if err != nil {
		return models.SyncMessagesResponse{}, fmt.Errorf("listing sync messages failed: %w", err)
	}
	if messages == nil {
		messages = []models.SyncMessage{}
	}

	return models.SyncMessagesResponse{Messages: messages, Length: len(messages)}, nil
}
