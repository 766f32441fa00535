// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/models"
)

// Worker is a background job that runs until stopped.
type Worker interface {
	// Start launches the job. It stops a previously started run first.
	Start(ctx context.Context)
	// Stop cancels the job and waits for it to exit. Safe to call on a
	// worker that is not running.
	Stop()
}

// RestoreRequester schedules restore operations.
type RestoreRequester interface {
	RequestRestoreOrCreate() *service.Future
}

// SyncMessagePoller handles the sync messages received since the last poll.
type SyncMessagePoller interface {
	Poll(ctx context.Context) error
}

// MutationRecorder is told about local entities that changed.
type MutationRecorder interface {
	RecordPendingMutation(kind models.RecordType, localID string)
}
