// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

// NewRestorePollWorker periodically asks the scheduler for a restore and
// waits for it, so that slow restores never pile up.
func NewRestorePollWorker(restorer RestoreRequester, interval time.Duration, logger *logger.Logger) Worker {
	return newJob("restore_poll", interval, func(ctx context.Context) error {
		return restorer.RequestRestoreOrCreate().Wait(ctx)
	}, logger)
}
