// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// ── key-value store ──────────────────────────────────────────────────────────

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return bytes.Clone(value), nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = bytes.Clone(value)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() error {
	return nil
}

// ── remote store ─────────────────────────────────────────────────────────────

// fakeRemote is an in-memory remote store with compare-and-swap writes.
type fakeRemote struct {
	mu       sync.Mutex
	manifest *models.Manifest
	items    map[string]models.StorageItem

	// alwaysConflict makes every write lose against a concurrent writer.
	alwaysConflict bool
	fetchErr       error
	itemsErr       error
	// itemsErrFrom is the first FetchItems call that fails with itemsErr.
	itemsErrFrom int

	calls       int
	itemFetches int
	fetched     [][]models.StorageIdentifier
	writes      []adapter.UpdateManifestRequest
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{items: make(map[string]models.StorageItem)}
}

// seed replaces the remote content with manifest and items.
func (f *fakeRemote) seed(manifest models.Manifest, items ...models.StorageItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manifest = copyManifest(manifest)
	f.items = make(map[string]models.StorageItem)
	for _, item := range items {
		f.items[item.Identifier.Key()] = item
	}
}

func (f *fakeRemote) FetchManifest(_ context.Context, greaterThan *uint64) (adapter.FetchManifestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.fetchErr != nil {
		return adapter.FetchManifestResult{}, f.fetchErr
	}
	if f.manifest == nil {
		return adapter.FetchManifestResult{Status: adapter.ManifestNoExisting}, nil
	}
	if greaterThan != nil && f.manifest.Version <= *greaterThan {
		return adapter.FetchManifestResult{Status: adapter.ManifestNoNewer}, nil
	}
	return adapter.FetchManifestResult{Status: adapter.ManifestLatest, Manifest: *copyManifest(*f.manifest)}, nil
}

func (f *fakeRemote) UpdateManifest(_ context.Context, req adapter.UpdateManifestRequest) (adapter.UpdateManifestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.alwaysConflict && f.manifest != nil {
		f.manifest.Version++
		return adapter.UpdateManifestResult{ConflictingManifest: copyManifest(*f.manifest)}, nil
	}
	if f.manifest != nil && req.Manifest.Version != f.manifest.Version+1 {
		return adapter.UpdateManifestResult{ConflictingManifest: copyManifest(*f.manifest)}, nil
	}

	if req.DeleteAllExistingRecords {
		f.items = make(map[string]models.StorageItem)
	}
	for _, id := range req.DeletedIdentifiers {
		delete(f.items, id.Key())
	}
	for _, item := range req.NewItems {
		f.items[item.Identifier.Key()] = item
	}
	f.manifest = copyManifest(req.Manifest)
	f.writes = append(f.writes, req)
	return adapter.UpdateManifestResult{}, nil
}

func (f *fakeRemote) FetchItems(_ context.Context, identifiers []models.StorageIdentifier, _ models.Manifest) ([]models.StorageItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.itemFetches++
	f.fetched = append(f.fetched, slices.Clone(identifiers))

	if f.itemsErr != nil && f.itemFetches >= f.itemsErrFrom {
		return nil, f.itemsErr
	}
	var out []models.StorageItem
	for _, id := range identifiers {
		if item, ok := f.items[id.Key()]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeRemote) current() models.Manifest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.manifest == nil {
		return models.Manifest{}
	}
	return *copyManifest(*f.manifest)
}

func (f *fakeRemote) item(id models.StorageIdentifier) (models.StorageItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id.Key()]
	return item, ok
}

func (f *fakeRemote) itemCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// contactACIs lists the ACIs of the stored contact records.
func (f *fakeRemote) contactACIs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, item := range f.items {
		if item.Record.Contact != nil {
			out = append(out, item.Record.Contact.ACI)
		}
	}
	slices.Sort(out)
	return out
}

func (f *fakeRemote) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func copyManifest(m models.Manifest) *models.Manifest {
	m.Identifiers = slices.Clone(m.Identifiers)
	m.RecordIkm = bytes.Clone(m.RecordIkm)
	return &m
}

// ── messenger ────────────────────────────────────────────────────────────────

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []models.SyncMessage
	inbox   []models.SyncMessage
	sendErr error
}

func (f *fakeMessenger) Send(_ context.Context, msg models.SyncMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMessenger) Receive(_ context.Context, afterID int64) ([]models.SyncMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SyncMessage
	for _, msg := range f.inbox {
		if msg.ID > afterID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessenger) sentTypes() []models.SyncMessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SyncMessageType, 0, len(f.sent))
	for _, msg := range f.sent {
		out = append(out, msg.Type)
	}
	return out
}

// ── updaters ─────────────────────────────────────────────────────────────────

// fakeContacts keeps contacts keyed by ACI, or by E164 when the record has
// no ACI. On disagreement the local copy wins and the merge asks for an
// upload. Records without an ACI are merged last.
type fakeContacts struct {
	local  map[models.RecipientID]models.ContactRecord
	merged []models.RecipientID
}

func newFakeContacts(records ...models.ContactRecord) *fakeContacts {
	f := &fakeContacts{local: make(map[models.RecipientID]models.ContactRecord)}
	for _, r := range records {
		f.local[contactID(r)] = r
	}
	return f
}

func contactID(r models.ContactRecord) models.RecipientID {
	if r.ACI != "" {
		return models.RecipientID(r.ACI)
	}
	return models.RecipientID(r.E164)
}

func (f *fakeContacts) LocalIDs(context.Context) ([]models.RecipientID, error) {
	return sortedKeys(f.local), nil
}

func (f *fakeContacts) BuildRecord(_ context.Context, id models.RecipientID, unknown models.UnknownFields) (models.ContactRecord, bool, error) {
	r, ok := f.local[id]
	if !ok {
		return models.ContactRecord{}, false, nil
	}
	r.Unknown = unknown.Clone()
	return r, true, nil
}

func (f *fakeContacts) MergeRecord(_ context.Context, record models.ContactRecord) (MergeResult[models.RecipientID], error) {
	if record.ACI == "" && record.E164 == "" {
		return InvalidRecord[models.RecipientID](), nil
	}
	id := contactID(record)
	f.merged = append(f.merged, id)
	if existing, ok := f.local[id]; ok && !existing.KnownFieldsEqual(&record) {
		return Merged(id, true), nil
	}
	record.Unknown = nil
	f.local[id] = record
	return Merged(id, false), nil
}

func (f *fakeContacts) UnknownFields(record models.ContactRecord) models.UnknownFields {
	return record.Unknown
}

func (f *fakeContacts) ShouldReaddOrphan(context.Context, models.RecipientID) (bool, error) {
	return true, nil
}

func (f *fakeContacts) ShouldDeferMerge(record models.ContactRecord) bool {
	return record.ACI == ""
}

// fakeAccount holds at most one account record. Remote always wins.
type fakeAccount struct {
	record *models.AccountRecord
	merges int
}

func (f *fakeAccount) LocalIDs(context.Context) ([]Singleton, error) {
	if f.record == nil {
		return nil, nil
	}
	return []Singleton{{}}, nil
}

func (f *fakeAccount) BuildRecord(_ context.Context, _ Singleton, unknown models.UnknownFields) (models.AccountRecord, bool, error) {
	if f.record == nil {
		return models.AccountRecord{}, false, nil
	}
	r := *f.record
	r.Unknown = unknown.Clone()
	return r, true, nil
}

func (f *fakeAccount) MergeRecord(_ context.Context, record models.AccountRecord) (MergeResult[Singleton], error) {
	record.Unknown = nil
	f.record = &record
	f.merges++
	return Merged(Singleton{}, false), nil
}

func (f *fakeAccount) UnknownFields(record models.AccountRecord) models.UnknownFields {
	return record.Unknown
}

func (f *fakeAccount) ShouldReaddOrphan(context.Context, Singleton) (bool, error) {
	return true, nil
}

func (f *fakeAccount) ShouldDeferMerge(models.AccountRecord) bool {
	return false
}

// noopUpdater syncs nothing and rejects every record.
type noopUpdater[ID comparable, R any] struct{}

func (noopUpdater[ID, R]) LocalIDs(context.Context) ([]ID, error) { return nil, nil }

func (noopUpdater[ID, R]) BuildRecord(context.Context, ID, models.UnknownFields) (R, bool, error) {
	var zero R
	return zero, false, nil
}

func (noopUpdater[ID, R]) MergeRecord(context.Context, R) (MergeResult[ID], error) {
	return InvalidRecord[ID](), nil
}

func (noopUpdater[ID, R]) UnknownFields(R) models.UnknownFields { return nil }

func (noopUpdater[ID, R]) ShouldReaddOrphan(context.Context, ID) (bool, error) { return false, nil }

func (noopUpdater[ID, R]) ShouldDeferMerge(R) bool { return false }

type fakeLocalRecipient struct {
	id models.RecipientID
	ok bool
}

func (f fakeLocalRecipient) LocalRecipientID(context.Context) (models.RecipientID, bool, error) {
	return f.id, f.ok, nil
}

// ── harness ──────────────────────────────────────────────────────────────────

var testStorageKey = bytes.Repeat([]byte{0x42}, 32)

// syncDevice is one device of an account wired to a shared remote.
type syncDevice struct {
	ops       Operations
	remote    *fakeRemote
	messenger *fakeMessenger
	kv        *memKV
	keys      *DeviceKeyStore
	states    StateStore
	contacts  *fakeContacts
	account   *fakeAccount
}

type deviceOption func(*syncDevice, *OperationsDeps)

func withLocalRecipient(id models.RecipientID) deviceOption {
	return func(_ *syncDevice, deps *OperationsDeps) {
		deps.LocalRecipient = fakeLocalRecipient{id: id, ok: true}
	}
}

func withoutStorageKey() deviceOption {
	return func(d *syncDevice, _ *OperationsDeps) {
		_ = d.keys.ClearStorageKey(context.Background())
	}
}

func newTestDevice(t *testing.T, deviceID string, primary bool, remote *fakeRemote, contacts *fakeContacts, opts ...deviceOption) *syncDevice {
	t.Helper()

	kv := newMemKV()
	keys := NewDeviceKeyStore(kv)
	require.NoError(t, keys.SetStorageKey(context.Background(), testStorageKey))

	d := &syncDevice{
		remote:    remote,
		messenger: &fakeMessenger{},
		kv:        kv,
		keys:      keys,
		states:    NewStateStore(kv),
		contacts:  contacts,
		account:   &fakeAccount{},
	}

	deps := OperationsDeps{
		Remote:         remote,
		Messenger:      d.messenger,
		Keys:           keys,
		Capability:     keys,
		States:         d.states,
		KV:             kv,
		LocalRecipient: fakeLocalRecipient{},
		Updaters: RecordUpdaters{
			Account:               d.account,
			Contact:               contacts,
			GroupV1:               noopUpdater[models.GroupV1ID, models.GroupV1Record]{},
			GroupV2:               noopUpdater[models.GroupMasterKey, models.GroupV2Record]{},
			StoryDistributionList: noopUpdater[models.DistributionListID, models.StoryDistributionListRecord]{},
			CallLink:              noopUpdater[models.CallLinkRootKey, models.CallLinkRecord]{},
		},
		GenerateRecordIkm: func() ([]byte, error) { return bytes.Repeat([]byte{7}, 32), nil },
	}
	for _, opt := range opts {
		opt(d, &deps)
	}

	cfg := config.ClientSync{
		DebounceInterval:        time.Hour,
		MaxConsecutiveConflicts: 3,
		BatchSize:               2,
		RetryAttempts:           1,
	}
	app := config.ClientApp{DeviceID: deviceID, PrimaryDevice: primary, Version: "1.0.0"}
	d.ops = NewOperations(deps, cfg, app, logger.Nop())
	return d
}

func (d *syncDevice) state(t *testing.T) State {
	t.Helper()
	st, err := d.states.Load(context.Background())
	require.NoError(t, err)
	return st
}

func (d *syncDevice) saveState(t *testing.T, st State) {
	t.Helper()
	require.NoError(t, d.states.Save(context.Background(), st))
}

func contact(aci, name string) models.ContactRecord {
	return models.ContactRecord{ACI: aci, GivenName: name}
}

func mustIdentifier(t *testing.T, kind models.RecordType) models.StorageIdentifier {
	t.Helper()
	id, err := models.GenerateStorageIdentifier(kind)
	require.NoError(t, err)
	return id
}

func contactItem(id models.StorageIdentifier, r models.ContactRecord) models.StorageItem {
	return models.StorageItem{Identifier: id, Record: models.StorageRecord{Contact: &r}}
}

func identifierKeys(ids []models.StorageIdentifier) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Key())
	}
	slices.Sort(out)
	return out
}
