// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"time"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

// NewSyncMessagesWorker polls the sync messages sent by the other devices
// of the account.
func NewSyncMessagesWorker(poller SyncMessagePoller, interval time.Duration, logger *logger.Logger) Worker {
	return newJob("sync_messages_poll", interval, poller.Poll, logger)
}
