// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

const defaultInterval = 5 * time.Minute

// job calls task once on Start and then on every tick of interval. A failed
// run is logged and retried on the next tick.
type job struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newJob(name string, interval time.Duration, task func(ctx context.Context) error, logger *logger.Logger) *job {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &job{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

func (j *job) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		j.runOnce(jobCtx)
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.runOnce(jobCtx)
			}
		}
	}()
}

func (j *job) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *job) runOnce(ctx context.Context) {
	if err := j.task(ctx); err != nil && ctx.Err() == nil {
		j.logger.Err(err).Str("worker", j.name).Msg("background job failed")
	}
}
