// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

type syncMessageRepository struct {
	*DB
	logger *logger.Logger
}

// NewSyncMessageRepository constructs a [SyncMessageRepository] backed by db.
func NewSyncMessageRepository(db *DB, logger *logger.Logger) SyncMessageRepository {
	logger.Debug().Msg("creating sync message repository")
	return &syncMessageRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *syncMessageRepository) Append(ctx context.Context, accountID string, msg models.SyncMessage) (models.SyncMessage, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertSyncMessageQuery(r.builder(), accountID, msg)
	if err != nil {
		return models.SyncMessage{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err = r.DB.QueryRowContext(ctx, query, args...).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		log.Err(err).
			Str("func", "*syncMessageRepository.Append").
			Str("account_id", accountID).
			Str("type", string(msg.Type)).
			Msg("failed to insert sync message")
		return models.SyncMessage{}, fmt.Errorf("%w: %w", ErrExecutingStatement, r.classify(err))
	}

	return msg, nil
}

func (r *syncMessageRepository) ListAfter(ctx context.Context, accountID, deviceID string, afterID int64, limit uint64) ([]models.SyncMessage, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListSyncMessagesQuery(r.builder(), accountID, deviceID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*syncMessageRepository.ListAfter").Str("account_id", accountID).Msg("failed to select sync messages")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, r.classify(err))
	}
	defer rows.Close()

	messages := make([]models.SyncMessage, 0, 8)
	for rows.Next() {
		var (
			msg     models.SyncMessage
			msgType string
		)
		if err = rows.Scan(&msg.ID, &msg.SourceDevice, &msgType, &msg.Payload, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		msg.Type = models.SyncMessageType(msgType)
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return messages, nil
}
