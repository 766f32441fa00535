// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// Manager schedules sync operations. Requests of the same kind coalesce into
// one queued operation, exactly one operation runs at a time, and the next
// one is picked by a fixed priority:
//
//	manifest rotation > mutation flush > cleanup > restore >
//	restore completion > backup
type Manager struct {
	ops    Operations
	cfg    config.ClientSync
	logger *logger.Logger

	mu       sync.Mutex
	state    managerState
	debounce *time.Timer
	running  bool
	closed   bool

	// opMu is held while an operation touches the sync state.
	opMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// managerState is the queue of requested work. It is guarded by Manager.mu.
type managerState struct {
	pendingMutations []PendingMutation
	mutationSeen     map[PendingMutation]struct{}

	backupRequested  bool
	cleanupRequested bool

	restoreRequested bool
	restoreFutures   []*Future

	// restoreCompletionFutures wait for every queued restore.
	restoreCompletionFutures []*Future
	mostRecentRestoreError   error

	rotationRequested bool
	rotationMode      RotationMode
	rotationFutures   []*Future
}

func (s *managerState) addMutation(m PendingMutation) {
	if s.mutationSeen == nil {
		s.mutationSeen = make(map[PendingMutation]struct{})
	}
	if _, ok := s.mutationSeen[m]; ok {
		return
	}
	s.mutationSeen[m] = struct{}{}
	s.pendingMutations = append(s.pendingMutations, m)
}

func (s *managerState) takeMutations() []PendingMutation {
	out := s.pendingMutations
	s.pendingMutations = nil
	s.mutationSeen = nil
	return out
}

// scheduledOperation is one unit of work popped from the queue. done runs
// after the operation with its error.
type scheduledOperation struct {
	name string
	run  func(ctx context.Context) error
	done func(err error)
}

// NewManager returns a Manager driving ops. Call Close to stop it.
func NewManager(ops Operations, cfg config.ClientSync, logger *logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		ops:    ops,
		cfg:    cfg,
		logger: logger,
		ctx:    logger.WithContext(ctx),
		cancel: cancel,
	}
}

// RecordPendingMutation notes that a local entity changed. A backup follows
// after the debounce interval unless one is already scheduled.
func (m *Manager) RecordPendingMutation(kind models.RecordType, localID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.state.addMutation(PendingMutation{Kind: kind, LocalID: localID})
	if !m.state.backupRequested && m.debounce == nil {
		m.debounce = time.AfterFunc(m.cfg.DebounceInterval, m.RequestBackup)
	}
	m.startNextOperationLocked()
}

// RequestBackup queues a backup.
func (m *Manager) RequestBackup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopDebounceLocked()
	if m.closed {
		return
	}
	m.state.backupRequested = true
	m.startNextOperationLocked()
}

// RequestRestoreOrCreate queues a restore. The future resolves when that
// restore, or one queued after it, completes.
func (m *Manager) RequestRestoreOrCreate() *Future {
	f := newFuture()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		f.resolve(ErrManagerClosed)
		return f
	}
	m.state.restoreRequested = true
	m.state.restoreFutures = append(m.state.restoreFutures, f)
	m.startNextOperationLocked()
	return f
}

// RequestManifestRotation queues a manifest rotation. Concurrent requests
// run once with the stricter mode.
func (m *Manager) RequestManifestRotation(mode RotationMode) *Future {
	f := newFuture()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		f.resolve(ErrManagerClosed)
		return f
	}
	if m.state.rotationRequested {
		m.state.rotationMode = m.state.rotationMode.stricter(mode)
	} else {
		m.state.rotationRequested = true
		m.state.rotationMode = mode
	}
	m.state.rotationFutures = append(m.state.rotationFutures, f)
	m.startNextOperationLocked()
	return f
}

// RequestCleanup queues the consistency sweep.
func (m *Manager) RequestCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.state.cleanupRequested = true
	m.startNextOperationLocked()
}

// WaitForPendingRestores returns a future that resolves with the outcome of
// the most recent restore once no restore is queued or running.
func (m *Manager) WaitForPendingRestores() *Future {
	f := newFuture()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		f.resolve(ErrManagerClosed)
		return f
	}
	m.state.restoreCompletionFutures = append(m.state.restoreCompletionFutures, f)
	m.startNextOperationLocked()
	return f
}

// ResetLocalState drops queued mutations and wipes the persisted sync
// state. It waits for the running operation to finish first.
func (m *Manager) ResetLocalState(ctx context.Context) error {
	m.mu.Lock()
	m.state.takeMutations()
	m.stopDebounceLocked()
	m.mu.Unlock()

	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.ops.ResetLocalState(ctx)
}

// Close stops scheduling, cancels the running operation and rejects every
// pending future with [ErrManagerClosed].
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopDebounceLocked()

	pending := append(m.state.rotationFutures, m.state.restoreFutures...)
	pending = append(pending, m.state.restoreCompletionFutures...)
	m.state = managerState{}
	m.mu.Unlock()

	resolveAll(pending, ErrManagerClosed)
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) stopDebounceLocked() {
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
}

// ── scheduling ───────────────────────────────────────────────────────────────

func (m *Manager) startNextOperationLocked() {
	if m.closed || m.running {
		return
	}

	op, ok := m.popNextOperationLocked()
	if !ok {
		return
	}

	m.running = true
	m.wg.Add(1)
	go m.execute(op)
}

func (m *Manager) execute(op scheduledOperation) {
	defer m.wg.Done()

	log := m.logger.With().Str("operation", op.name).Logger()
	log.Debug().Msg("starting sync operation")

	m.opMu.Lock()
	err := op.run(m.ctx)
	m.opMu.Unlock()

	if err != nil {
		log.Err(err).Msg("sync operation failed")
	}
	op.done(err)

	m.mu.Lock()
	m.running = false
	m.startNextOperationLocked()
	m.mu.Unlock()
}

// popNextOperationLocked takes the highest priority request off the queue.
func (m *Manager) popNextOperationLocked() (scheduledOperation, bool) {
	s := &m.state

	if s.rotationRequested {
		mode, futures := s.rotationMode, s.rotationFutures
		s.rotationRequested, s.rotationFutures = false, nil
		return scheduledOperation{
			name: "rotate_manifest",
			run:  func(ctx context.Context) error { return m.ops.RotateManifest(ctx, mode) },
			done: func(err error) { resolveAll(futures, err) },
		}, true
	}

	if len(s.pendingMutations) > 0 {
		mutations := s.takeMutations()
		return scheduledOperation{
			name: "flush_pending_mutations",
			run:  func(ctx context.Context) error { return m.ops.FlushPendingMutations(ctx, mutations) },
			done: func(error) {},
		}, true
	}

	if s.cleanupRequested {
		s.cleanupRequested = false
		return scheduledOperation{
			name: "clean_up",
			run: func(ctx context.Context) error {
				if err := m.ops.CleanUp(ctx); err != nil {
					return err
				}
				m.requestBackupIfPending(ctx)
				return nil
			},
			done: func(error) {},
		}, true
	}

	if s.restoreRequested {
		futures := s.restoreFutures
		s.restoreRequested, s.restoreFutures = false, nil
		return scheduledOperation{
			name: "restore_or_create",
			run: func(ctx context.Context) error {
				if err := m.ops.RestoreOrCreate(ctx); err != nil {
					return err
				}
				m.requestBackupIfPending(ctx)
				return nil
			},
			done: func(err error) {
				m.mu.Lock()
				m.state.mostRecentRestoreError = err
				m.mu.Unlock()
				resolveAll(futures, err)
			},
		}, true
	}

	if len(s.restoreCompletionFutures) > 0 {
		resolveAll(s.restoreCompletionFutures, s.mostRecentRestoreError)
		s.restoreCompletionFutures = nil
	}

	if s.backupRequested {
		s.backupRequested = false
		return scheduledOperation{
			name: "backup",
			run:  m.ops.Backup,
			done: func(error) {},
		}, true
	}

	return scheduledOperation{}, false
}

// requestBackupIfPending queues a backup when the last operation left
// entities marked as updated.
func (m *Manager) requestBackupIfPending(ctx context.Context) {
	pending, err := m.ops.HasPendingChanges(ctx)
	if err != nil {
		m.logger.Err(err).Str("func", "*Manager.requestBackupIfPending").Msg("failed to check pending changes")
		return
	}
	if pending {
		m.RequestBackup()
	}
}
