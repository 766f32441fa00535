// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// stubOps records the operations the manager runs. The operation named by
// blockOn parks once until release is closed.
type stubOps struct {
	mu        sync.Mutex
	calls     []string
	flushed   [][]PendingMutation
	rotations []RotationMode
	resets    int

	restoreErr error
	pending    bool

	// afterRestore and afterRotate run once the operation has finished.
	afterRestore func()
	afterRotate  func()

	blockOn string
	started chan string
	release chan struct{}
}

func newStubOps(blockOn string) *stubOps {
	return &stubOps{
		blockOn: blockOn,
		started: make(chan string, 1),
		release: make(chan struct{}),
	}
}

func (s *stubOps) enter(ctx context.Context, name string) error {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	block := s.blockOn == name
	if block {
		s.blockOn = ""
	}
	s.mu.Unlock()

	if !block {
		return nil
	}
	s.started <- name
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubOps) FlushPendingMutations(ctx context.Context, mutations []PendingMutation) error {
	s.mu.Lock()
	s.flushed = append(s.flushed, mutations)
	s.mu.Unlock()
	return s.enter(ctx, "flush")
}

func (s *stubOps) Backup(ctx context.Context) error {
	return s.enter(ctx, "backup")
}

func (s *stubOps) RestoreOrCreate(ctx context.Context) error {
	if err := s.enter(ctx, "restore"); err != nil {
		return err
	}
	s.mu.Lock()
	err, hook := s.restoreErr, s.afterRestore
	s.mu.Unlock()
	if err == nil && hook != nil {
		hook()
	}
	return err
}

func (s *stubOps) RotateManifest(ctx context.Context, mode RotationMode) error {
	s.mu.Lock()
	s.rotations = append(s.rotations, mode)
	hook := s.afterRotate
	s.mu.Unlock()
	if err := s.enter(ctx, "rotate"); err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return nil
}

func (s *stubOps) CleanUp(ctx context.Context) error {
	return s.enter(ctx, "cleanup")
}

func (s *stubOps) ResetLocalState(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

func (s *stubOps) HasPendingChanges(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, nil
}

func (s *stubOps) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *stubOps) count(name string) int {
	n := 0
	for _, c := range s.snapshot() {
		if c == name {
			n++
		}
	}
	return n
}

func newTestManager(t *testing.T, ops Operations, debounce time.Duration) *Manager {
	t.Helper()
	m := NewManager(ops, config.ClientSync{DebounceInterval: debounce}, logger.Nop())
	t.Cleanup(m.Close)
	return m
}

func waitStarted(t *testing.T, ops *stubOps, name string) {
	t.Helper()
	select {
	case got := <-ops.started:
		require.Equal(t, name, got)
	case <-time.After(time.Second):
		t.Fatalf("%s did not start", name)
	}
}

func waitFuture(t *testing.T, f *Future) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return f.Wait(ctx)
}

// ── scheduling ───────────────────────────────────────────────────────────────

func TestManager_RunsQueuedOperationsByPriority(t *testing.T) {
	ops := newStubOps("restore")
	m := newTestManager(t, ops, time.Hour)

	m.RequestRestoreOrCreate()
	waitStarted(t, ops, "restore")

	m.RequestBackup()
	m.RequestCleanup()
	m.RecordPendingMutation(models.RecordTypeContact, "alice")
	rotation := m.RequestManifestRotation(RotationPreservingRecordsIfPossible)
	close(ops.release)

	require.NoError(t, waitFuture(t, rotation))
	assert.Eventually(t, func() bool { return len(ops.snapshot()) == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"restore", "rotate", "flush", "cleanup", "backup"}, ops.snapshot())
}

func TestManager_CoalescesRequests(t *testing.T) {
	ops := newStubOps("restore")
	m := newTestManager(t, ops, time.Hour)

	first := m.RequestRestoreOrCreate()
	waitStarted(t, ops, "restore")

	second := m.RequestRestoreOrCreate()
	third := m.RequestRestoreOrCreate()
	m.RequestBackup()
	m.RequestBackup()
	m.RequestBackup()
	close(ops.release)

	for _, f := range []*Future{first, second, third} {
		require.NoError(t, waitFuture(t, f))
	}
	assert.Eventually(t, func() bool { return ops.count("backup") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, ops.count("restore"))
}

func TestManager_RotationUsesStricterMode(t *testing.T) {
	ops := newStubOps("restore")
	m := newTestManager(t, ops, time.Hour)

	m.RequestRestoreOrCreate()
	waitStarted(t, ops, "restore")

	a := m.RequestManifestRotation(RotationPreservingRecordsIfPossible)
	b := m.RequestManifestRotation(RotationAlsoRotatingRecords)
	c := m.RequestManifestRotation(RotationPreservingRecordsIfPossible)
	close(ops.release)

	for _, f := range []*Future{a, b, c} {
		require.NoError(t, waitFuture(t, f))
	}
	ops.mu.Lock()
	defer ops.mu.Unlock()
	assert.Equal(t, []RotationMode{RotationAlsoRotatingRecords}, ops.rotations)
}

func TestManager_MutationsAreDeduplicated(t *testing.T) {
	ops := newStubOps("restore")
	m := newTestManager(t, ops, time.Hour)

	m.RequestRestoreOrCreate()
	waitStarted(t, ops, "restore")

	m.RecordPendingMutation(models.RecordTypeContact, "alice")
	m.RecordPendingMutation(models.RecordTypeContact, "alice")
	m.RecordPendingMutation(models.RecordTypeCallLink, "alice")
	close(ops.release)

	assert.Eventually(t, func() bool { return ops.count("flush") == 1 }, time.Second, 5*time.Millisecond)
	ops.mu.Lock()
	defer ops.mu.Unlock()
	assert.Equal(t, []PendingMutation{
		{Kind: models.RecordTypeContact, LocalID: "alice"},
		{Kind: models.RecordTypeCallLink, LocalID: "alice"},
	}, ops.flushed[0])
}

func TestManager_DebouncedBackupAfterMutation(t *testing.T) {
	ops := newStubOps("")
	m := newTestManager(t, ops, 10*time.Millisecond)

	m.RecordPendingMutation(models.RecordTypeContact, "alice")

	assert.Eventually(t, func() bool { return ops.count("backup") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"flush", "backup"}, ops.snapshot())
}

func TestManager_BackupFollowsRestoreWithPendingChanges(t *testing.T) {
	ops := newStubOps("")
	ops.pending = true
	m := newTestManager(t, ops, time.Hour)

	require.NoError(t, waitFuture(t, m.RequestRestoreOrCreate()))
	assert.Eventually(t, func() bool { return ops.count("backup") == 1 }, time.Second, 5*time.Millisecond)
}

// ── restore outcomes ─────────────────────────────────────────────────────────

func TestManager_RestoreErrorReachesFutures(t *testing.T) {
	boom := errors.New("boom")
	ops := newStubOps("")
	ops.restoreErr = boom
	m := newTestManager(t, ops, time.Hour)

	err := waitFuture(t, m.RequestRestoreOrCreate())
	require.ErrorIs(t, err, boom)

	err = waitFuture(t, m.WaitForPendingRestores())
	assert.ErrorIs(t, err, boom)
}

func TestManager_WaitForPendingRestoresWithoutRestore(t *testing.T) {
	m := newTestManager(t, newStubOps(""), time.Hour)
	assert.NoError(t, waitFuture(t, m.WaitForPendingRestores()))
}

// ── lifecycle ────────────────────────────────────────────────────────────────

func TestManager_CloseRejectsPendingFutures(t *testing.T) {
	ops := newStubOps("restore")
	m := NewManager(ops, config.ClientSync{DebounceInterval: time.Hour}, logger.Nop())

	running := m.RequestRestoreOrCreate()
	waitStarted(t, ops, "restore")
	queued := m.RequestManifestRotation(RotationAlsoRotatingRecords)

	m.Close()

	assert.ErrorIs(t, waitFuture(t, queued), ErrManagerClosed)
	assert.ErrorIs(t, waitFuture(t, running), context.Canceled)
	assert.ErrorIs(t, waitFuture(t, m.RequestRestoreOrCreate()), ErrManagerClosed)
	assert.ErrorIs(t, waitFuture(t, m.WaitForPendingRestores()), ErrManagerClosed)

	// closing twice is fine
	m.Close()
}

func TestManager_ResetLocalStateDropsQueuedMutations(t *testing.T) {
	ops := newStubOps("restore")
	m := newTestManager(t, ops, time.Hour)

	m.RequestRestoreOrCreate()
	waitStarted(t, ops, "restore")
	m.RecordPendingMutation(models.RecordTypeContact, "alice")

	done := make(chan error, 1)
	go func() { done <- m.ResetLocalState(context.Background()) }()

	// reset drops the queue before waiting for the running operation
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.state.pendingMutations) == 0
	}, time.Second, 5*time.Millisecond)
	close(ops.release)
	require.NoError(t, <-done)

	m.RequestBackup()
	assert.Eventually(t, func() bool { return ops.count("backup") == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, ops.count("flush"))
	ops.mu.Lock()
	defer ops.mu.Unlock()
	assert.Equal(t, 1, ops.resets)
}

// ── future ───────────────────────────────────────────────────────────────────

func TestFuture(t *testing.T) {
	f := newFuture()
	assert.NoError(t, f.Err())

	select {
	case <-f.Done():
		t.Fatal("future resolved early")
	default:
	}

	first := errors.New("first")
	f.resolve(first)
	f.resolve(errors.New("second"))

	assert.ErrorIs(t, f.Err(), first)
	assert.ErrorIs(t, waitFuture(t, f), first)
}

func TestFuture_WaitHonoursContext(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.Wait(ctx), context.Canceled)
}
