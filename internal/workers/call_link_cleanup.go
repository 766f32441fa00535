// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// callLinkCleanup purges call links an admin deleted more than threshold
// ago and records a pending mutation for each, so the next backup removes
// their remote records.
type callLinkCleanup struct {
	links     store.CallLinkRepository
	recorder  MutationRecorder
	threshold time.Duration
	now       func() time.Time
}

// NewCallLinkCleanupWorker returns the call-link cleanup job.
func NewCallLinkCleanupWorker(links store.CallLinkRepository, recorder MutationRecorder, threshold, interval time.Duration, logger *logger.Logger) Worker {
	c := &callLinkCleanup{
		links:     links,
		recorder:  recorder,
		threshold: threshold,
		now:       time.Now,
	}
	return newJob("call_link_cleanup", interval, c.run, logger)
}

func (c *callLinkCleanup) run(ctx context.Context) error {
	before := c.now().Add(-c.threshold)

	deleted, err := c.links.DeleteExpired(ctx, before)
	if err != nil {
		return fmt.Errorf("delete expired call links: %w", err)
	}

	for _, rootKey := range deleted {
		c.recorder.RecordPendingMutation(models.RecordTypeCallLink, string(rootKey))
	}
	if len(deleted) > 0 {
		logger.FromContext(ctx).Info().Int("count", len(deleted)).Msg("expired call links deleted")
	}
	return nil
}
