// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/mock"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

func newTestSyncMessageSvc(t *testing.T) (SyncMessageService, *mock.MockSyncMessageRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockSyncMessageRepository(ctrl)
	return NewSyncMessageService(repo, logger.Nop()), repo
}

// ── Send ─────────────────────────────────────────────────────────────────────

func TestSyncMessageService_Send(t *testing.T) {
	svc, repo := newTestSyncMessageSvc(t)
	ctx := context.Background()

	msg := models.SyncMessage{Type: models.SyncMessageFetchLatestManifest, SourceDevice: "phone"}
	stored := msg
	stored.ID = 12
	stored.CreatedAt = time.Now()
	repo.EXPECT().Append(ctx, "acc-1", msg).Return(stored, nil)

	got, err := svc.Send(ctx, "acc-1", msg)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ID)
}

func TestSyncMessageService_Send_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		account string
		msg     models.SyncMessage
		want    error
	}{
		{"no account", "", models.SyncMessage{Type: models.SyncMessageRequestKeys, SourceDevice: "d"}, ErrNoAccountProvided},
		{"no device", "acc", models.SyncMessage{Type: models.SyncMessageRequestKeys}, ErrNoDeviceProvided},
		{"unknown type", "acc", models.SyncMessage{Type: "reboot", SourceDevice: "d"}, ErrInvalidDataProvided},
		{"keys without payload", "acc", models.SyncMessage{Type: models.SyncMessageKeys, SourceDevice: "d"}, ErrInvalidDataProvided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// репозиторий не должен вызываться
			svc, _ := newTestSyncMessageSvc(t)

			_, err := svc.Send(context.Background(), tt.account, tt.msg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// ── Receive ──────────────────────────────────────────────────────────────────

func TestSyncMessageService_Receive(t *testing.T) {
	svc, repo := newTestSyncMessageSvc(t)
	ctx := context.Background()

	messages := []models.SyncMessage{
		{ID: 4, Type: models.SyncMessageFetchLatestManifest, SourceDevice: "laptop"},
		{ID: 5, Type: models.SyncMessageRequestKeys, SourceDevice: "laptop"},
	}
	repo.EXPECT().ListAfter(ctx, "acc-1", "phone", int64(3), uint64(syncMessagesPageSize)).Return(messages, nil)

	resp, err := svc.Receive(ctx, "acc-1", "phone", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Length)
	assert.Equal(t, messages, resp.Messages)
}

func TestSyncMessageService_Receive_Empty(t *testing.T) {
	svc, repo := newTestSyncMessageSvc(t)
	ctx := context.Background()

	repo.EXPECT().ListAfter(ctx, "acc-1", "phone", int64(0), gomock.Any()).Return(nil, nil)

	resp, err := svc.Receive(ctx, "acc-1", "phone", 0)
	require.NoError(t, err)
	assert.NotNil(t, resp.Messages)
	assert.Zero(t, resp.Length)
}

func TestSyncMessageService_Receive_Errors(t *testing.T) {
	svc, repo := newTestSyncMessageSvc(t)
	ctx := context.Background()

	_, err := svc.Receive(ctx, "acc-1", "", 0)
	assert.ErrorIs(t, err, ErrNoDeviceProvided)

	repo.EXPECT().ListAfter(ctx, "acc-1", "phone", int64(0), gomock.Any()).Return(nil, store.ErrScanningRows)
	_, err = svc.Receive(ctx, "acc-1", "phone", 0)
	assert.ErrorIs(t, err, store.ErrScanningRows)
}
