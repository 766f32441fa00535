// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/mock"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// ── restore or create ────────────────────────────────────────────────────────

func TestOperations_RestoreOrCreate_PrimaryCreatesFirstManifest(t *testing.T) {
	remote := newFakeRemote()
	d := newTestDevice(t, "primary", true, remote,
		newFakeContacts(contact("alice", "Alice"), contact("bob", "Bob"), contact("carol", "Carol")))
	ctx := context.Background()

	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	manifest := remote.current()
	assert.Equal(t, uint64(1), manifest.Version)
	assert.Equal(t, "primary", manifest.SourceDevice)
	assert.Len(t, manifest.Identifiers, 3)
	assert.Equal(t, 3, remote.itemCount())

	st := d.state(t)
	assert.Equal(t, uint64(1), st.ManifestVersion)
	assert.Len(t, st.Contacts.Identifiers, 3)
	assert.Equal(t, identifierKeys(manifest.Identifiers), identifierKeys(st.AllIdentifiers()))
	assert.Equal(t, "1.0.0", st.UnknownFieldLastCheckedAppVersion)
	assert.False(t, st.HasPendingChanges())

	assert.Equal(t, []models.SyncMessageType{models.SyncMessageFetchLatestManifest}, d.messenger.sentTypes())
}

func TestOperations_RestoreOrCreate_LinkedDeviceWaitsForPrimary(t *testing.T) {
	remote := newFakeRemote()
	d := newTestDevice(t, "laptop", false, remote, newFakeContacts(contact("alice", "Alice")))

	require.NoError(t, d.ops.RestoreOrCreate(context.Background()))

	assert.Equal(t, uint64(0), remote.current().Version)
	assert.Empty(t, d.messenger.sentTypes())
}

func TestOperations_RestoreOrCreate_NoNewerManifest(t *testing.T) {
	remote := newFakeRemote()
	d := newTestDevice(t, "primary", true, remote, newFakeContacts(contact("alice", "Alice")))
	ctx := context.Background()

	require.NoError(t, d.ops.RestoreOrCreate(ctx))
	fetches := remote.itemFetches

	require.NoError(t, d.ops.RestoreOrCreate(ctx))
	assert.Equal(t, fetches, remote.itemFetches)
	assert.Equal(t, uint64(1), d.state(t).ManifestVersion)
}

func TestOperations_RestoreOrCreate_RecordIkmWhenCapable(t *testing.T) {
	remote := newFakeRemote()
	d := newTestDevice(t, "primary", true, remote, newFakeContacts(contact("alice", "Alice")))
	ctx := context.Background()
	require.NoError(t, d.keys.SetRecordIkmCapable(ctx))

	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	assert.True(t, remote.current().HasRecordIkm())
	assert.Equal(t, remote.current().RecordIkm, d.state(t).ManifestRecordIkm)
}

// ── backup ───────────────────────────────────────────────────────────────────

func TestOperations_Backup_ConflictMergesAndWritesNextVersion(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	// another device already moved the store from v5 to v7
	aliceV7 := mustIdentifier(t, models.RecordTypeContact)
	bobV7 := mustIdentifier(t, models.RecordTypeContact)
	remote.seed(
		models.Manifest{Version: 7, SourceDevice: "tablet", Identifiers: []models.StorageIdentifier{aliceV7, bobV7}},
		contactItem(aliceV7, contact("alice", "Alice Remote")),
		contactItem(bobV7, contact("bob", "Bob")),
	)

	d := newTestDevice(t, "primary", true, remote, newFakeContacts(contact("alice", "Alice Local")))

	aliceV5 := mustIdentifier(t, models.RecordTypeContact)
	st := NewState()
	st.ManifestVersion = 5
	st.Contacts.setIdentifier("alice", aliceV5)
	st.Contacts.setChange("alice", ChangeStateUpdated)
	d.saveState(t, st)

	require.NoError(t, d.ops.Backup(ctx))

	manifest := remote.current()
	require.Equal(t, uint64(8), manifest.Version)
	require.Len(t, manifest.Identifiers, 2)

	set := manifest.IdentifierSet()
	assert.True(t, set.Contains(bobV7), "untouched remote record is kept")
	assert.False(t, set.Contains(aliceV7), "rewritten record gets a new identifier")
	assert.False(t, set.Contains(aliceV5))

	_, stillThere := remote.item(aliceV7)
	assert.False(t, stillThere)

	got := d.state(t)
	assert.Equal(t, uint64(8), got.ManifestVersion)
	assert.Equal(t, 0, got.ConsecutiveConflicts)
	assert.False(t, got.HasPendingChanges())

	item, ok := remote.item(got.Contacts.Identifiers["alice"])
	require.True(t, ok)
	assert.Equal(t, "Alice Local", item.Record.Contact.GivenName)

	// the remote-only contact was merged locally
	assert.Equal(t, "Bob", d.contacts.local["bob"].GivenName)
}

func TestOperations_Backup_NothingPendingMakesNoRemoteCalls(t *testing.T) {
	remote := newFakeRemote()
	d := newTestDevice(t, "primary", true, remote, newFakeContacts(contact("alice", "Alice")))
	ctx := context.Background()

	require.NoError(t, d.ops.RestoreOrCreate(ctx))
	calls := remote.callCount()
	sent := len(d.messenger.sentTypes())

	require.NoError(t, d.ops.Backup(ctx))
	assert.Equal(t, calls, remote.callCount())
	assert.Len(t, d.messenger.sentTypes(), sent)
}

func TestOperations_Backup_DeletedEntityRemovesRemoteRecord(t *testing.T) {
	remote := newFakeRemote()
	contacts := newFakeContacts(contact("alice", "Alice"), contact("bob", "Bob"))
	d := newTestDevice(t, "primary", true, remote, contacts)
	ctx := context.Background()

	require.NoError(t, d.ops.RestoreOrCreate(ctx))
	bob := d.state(t).Contacts.Identifiers["bob"]

	delete(contacts.local, "bob")
	require.NoError(t, d.ops.FlushPendingMutations(ctx, []PendingMutation{{Kind: models.RecordTypeContact, LocalID: "bob"}}))
	require.NoError(t, d.ops.Backup(ctx))

	manifest := remote.current()
	assert.Equal(t, uint64(2), manifest.Version)
	assert.Len(t, manifest.Identifiers, 1)
	assert.False(t, manifest.IdentifierSet().Contains(bob))
	_, ok := remote.item(bob)
	assert.False(t, ok)
	assert.NotContains(t, d.state(t).Contacts.Identifiers, models.RecipientID("bob"))
}

func TestOperations_Backup_TooManyConsecutiveConflicts(t *testing.T) {
	remote := newFakeRemote()
	remote.seed(models.Manifest{Version: 1})
	remote.alwaysConflict = true

	d := newTestDevice(t, "primary", true, remote, newFakeContacts(contact("alice", "Alice")))
	ctx := context.Background()
	require.NoError(t, d.ops.FlushPendingMutations(ctx, []PendingMutation{{Kind: models.RecordTypeContact, LocalID: "alice"}}))

	err := d.ops.Backup(ctx)
	require.ErrorIs(t, err, ErrTooManyConsecutiveConflicts)
	assert.Equal(t, 0, d.state(t).ConsecutiveConflicts)
}

func TestOperations_Backup_SkippedWithoutStorageKey(t *testing.T) {
	remote := newFakeRemote()
	d := newTestDevice(t, "laptop", false, remote, newFakeContacts(contact("alice", "Alice")), withoutStorageKey())
	ctx := context.Background()
	require.NoError(t, d.ops.FlushPendingMutations(ctx, []PendingMutation{{Kind: models.RecordTypeContact, LocalID: "alice"}}))

	require.NoError(t, d.ops.Backup(ctx))
	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	assert.Zero(t, remote.callCount())
	st := d.state(t)
	assert.True(t, st.HasPendingChanges())
}

// ── unknown records ──────────────────────────────────────────────────────────

func TestOperations_UnknownRecordTypeSurvivesRewrite(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	alice := mustIdentifier(t, models.RecordTypeContact)
	future := mustIdentifier(t, models.RecordType(99))
	remote.seed(
		models.Manifest{Version: 3, Identifiers: []models.StorageIdentifier{alice, future}},
		contactItem(alice, contact("alice", "Alice")),
		models.StorageItem{Identifier: future},
	)

	d := newTestDevice(t, "laptop", false, remote, newFakeContacts())
	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	st := d.state(t)
	assert.Equal(t, uint64(3), st.ManifestVersion)
	assert.Equal(t, []models.StorageIdentifier{future}, st.UnknownIdentifiers())
	assert.Empty(t, st.InvalidIdentifiers)

	d.contacts.local["alice"] = contact("alice", "Alice Renamed")
	require.NoError(t, d.ops.FlushPendingMutations(ctx, []PendingMutation{{Kind: models.RecordTypeContact, LocalID: "alice"}}))
	require.NoError(t, d.ops.Backup(ctx))

	manifest := remote.current()
	assert.Equal(t, uint64(4), manifest.Version)
	assert.True(t, manifest.IdentifierSet().Contains(future))
	_, ok := remote.item(future)
	assert.True(t, ok)
}

func TestOperations_InvalidRecordIsDeletedByNextWrite(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	broken := mustIdentifier(t, models.RecordTypeContact)
	remote.seed(
		models.Manifest{Version: 2, Identifiers: []models.StorageIdentifier{broken}},
		contactItem(broken, models.ContactRecord{GivenName: "nobody"}),
	)

	d := newTestDevice(t, "primary", true, remote, newFakeContacts(contact("alice", "Alice")))
	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	st := d.state(t)
	require.Len(t, st.InvalidIdentifiers, 1)
	assert.True(t, st.InvalidIdentifiers[0].Equal(broken))

	require.NoError(t, d.ops.FlushPendingMutations(ctx, []PendingMutation{{Kind: models.RecordTypeContact, LocalID: "alice"}}))
	require.NoError(t, d.ops.Backup(ctx))

	assert.False(t, remote.current().IdentifierSet().Contains(broken))
	_, ok := remote.item(broken)
	assert.False(t, ok)
	assert.Empty(t, d.state(t).InvalidIdentifiers)
}

// ── multiple devices ─────────────────────────────────────────────────────────

func TestOperations_DevicesConverge(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	phone := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice"), contact("bob", "Bob")))
	laptop := newTestDevice(t, "laptop", false, remote, newFakeContacts())

	require.NoError(t, phone.ops.RestoreOrCreate(ctx))
	require.NoError(t, laptop.ops.RestoreOrCreate(ctx))
	assert.Len(t, laptop.contacts.local, 2)

	laptop.contacts.local["carol"] = contact("carol", "Carol")
	require.NoError(t, laptop.ops.FlushPendingMutations(ctx, []PendingMutation{{Kind: models.RecordTypeContact, LocalID: "carol"}}))
	require.NoError(t, laptop.ops.Backup(ctx))
	require.NoError(t, phone.ops.RestoreOrCreate(ctx))

	manifest := remote.current()
	assert.Equal(t, uint64(2), manifest.Version)
	assert.Equal(t, "Carol", phone.contacts.local["carol"].GivenName)
	phoneState, laptopState := phone.state(t), laptop.state(t)
	assert.Equal(t, identifierKeys(manifest.Identifiers), identifierKeys(phoneState.AllIdentifiers()))
	assert.Equal(t, identifierKeys(manifest.Identifiers), identifierKeys(laptopState.AllIdentifiers()))
}

func TestOperations_MergeIsIdempotent(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	phone := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice"), contact("bob", "Bob")))
	laptop := newTestDevice(t, "laptop", false, remote, newFakeContacts())
	require.NoError(t, phone.ops.RestoreOrCreate(ctx))
	require.NoError(t, laptop.ops.RestoreOrCreate(ctx))

	before := laptop.state(t)
	fetches := remote.itemFetches

	// force the same manifest to be merged again
	st := laptop.state(t)
	st.RefetchLatestManifest = true
	laptop.saveState(t, st)
	require.NoError(t, laptop.ops.RestoreOrCreate(ctx))

	after := laptop.state(t)
	assert.Equal(t, before.Contacts, after.Contacts)
	assert.Equal(t, before.ManifestVersion, after.ManifestVersion)
	assert.False(t, after.RefetchLatestManifest)
	assert.Equal(t, fetches, remote.itemFetches, "no record is downloaded twice")
	assert.Len(t, laptop.contacts.local, 2)
}

// ── merge ────────────────────────────────────────────────────────────────────

func TestOperations_Merge_FailedBatchCommitsNothing(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	alice := mustIdentifier(t, models.RecordTypeContact)
	bob := mustIdentifier(t, models.RecordTypeContact)
	carol := mustIdentifier(t, models.RecordTypeContact)
	remote.seed(
		models.Manifest{Version: 3, Identifiers: []models.StorageIdentifier{alice, bob, carol}},
		contactItem(alice, contact("alice", "Alice")),
		contactItem(bob, contact("bob", "Bob")),
		contactItem(carol, contact("carol", "Carol")),
	)
	// the first batch of two arrives, the second one fails
	remote.itemsErr = errors.New("transient network error")
	remote.itemsErrFrom = 2

	d := newTestDevice(t, "laptop", false, remote, newFakeContacts())

	err := d.ops.RestoreOrCreate(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeysRequested)

	st := d.state(t)
	assert.Equal(t, uint64(0), st.ManifestVersion)
	assert.Empty(t, st.Contacts.Identifiers, "no identifier of a half merged manifest is kept")
	assert.Empty(t, st.Contacts.Changes)
	assert.Equal(t, 1, st.ConsecutiveConflicts)

	remote.mu.Lock()
	remote.itemsErr = nil
	remote.mu.Unlock()
	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	st = d.state(t)
	assert.Equal(t, uint64(3), st.ManifestVersion)
	assert.Len(t, st.Contacts.Identifiers, 3)
	assert.Equal(t, 0, st.ConsecutiveConflicts)
}

func TestOperations_Merge_AccountRecordFirstAndAlone(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	account := mustIdentifier(t, models.RecordTypeAccount)
	alice := mustIdentifier(t, models.RecordTypeContact)
	bob := mustIdentifier(t, models.RecordTypeContact)
	remote.seed(
		models.Manifest{Version: 2, Identifiers: []models.StorageIdentifier{alice, account, bob}},
		contactItem(alice, contact("alice", "Alice")),
		models.StorageItem{Identifier: account, Record: models.StorageRecord{Account: &models.AccountRecord{GivenName: "Me"}}},
		contactItem(bob, contact("bob", "Bob")),
	)

	d := newTestDevice(t, "laptop", false, remote, newFakeContacts())
	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	require.Len(t, remote.fetched, 2)
	assert.Equal(t, []models.StorageIdentifier{account}, remote.fetched[0])
	for _, id := range remote.fetched[1] {
		assert.NotEqual(t, models.RecordTypeAccount, id.Type)
	}

	assert.Equal(t, 1, d.account.merges)
	require.NotNil(t, d.account.record)
	assert.Equal(t, "Me", d.account.record.GivenName)

	st := d.state(t)
	require.NotNil(t, st.Account.Identifier)
	assert.True(t, st.Account.Identifier.Equal(account))
	assert.Len(t, st.Contacts.Identifiers, 2)
}

func TestOperations_Merge_ContactsWithoutACIGoLast(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	records := []models.ContactRecord{
		{E164: "+100", GivenName: "Phone One"},
		contact("a1", "One"),
		{E164: "+200", GivenName: "Phone Two"},
		contact("a2", "Two"),
		contact("a3", "Three"),
	}
	var ids []models.StorageIdentifier
	var items []models.StorageItem
	for _, r := range records {
		id := mustIdentifier(t, models.RecordTypeContact)
		ids = append(ids, id)
		items = append(items, contactItem(id, r))
	}
	remote.seed(models.Manifest{Version: 2, Identifiers: ids}, items...)

	d := newTestDevice(t, "laptop", false, remote, newFakeContacts())
	require.NoError(t, d.ops.RestoreOrCreate(ctx))

	// batches of two: three fetches, deferred records merged after all of them
	assert.Equal(t, 3, remote.itemFetches)
	merged := d.contacts.merged
	require.Len(t, merged, 5)
	assert.ElementsMatch(t, []models.RecipientID{"a1", "a2", "a3"}, merged[:3])
	assert.ElementsMatch(t, []models.RecipientID{"+100", "+200"}, merged[3:])
	assert.Len(t, d.state(t).Contacts.Identifiers, 5)
}

// ── create from scratch ──────────────────────────────────────────────────────

func TestOperations_CreateNewManifest_Conflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("retries once on top of the remote version", func(t *testing.T) {
		remote := newFakeRemote()
		remote.seed(models.Manifest{Version: 3})
		d := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice")))
		ops := d.ops.(*syncOperations)

		require.NoError(t, ops.createNewManifest(ctx, 1))

		assert.Equal(t, uint64(4), remote.current().Version)
		require.Len(t, remote.writes, 1)
		assert.True(t, remote.writes[0].DeleteAllExistingRecords)
		assert.Equal(t, []string{"alice"}, remote.contactACIs())
		assert.Equal(t, uint64(4), d.state(t).ManifestVersion)
	})

	t.Run("second conflict is fatal", func(t *testing.T) {
		remote := newFakeRemote()
		remote.seed(models.Manifest{Version: 1})
		remote.alwaysConflict = true
		d := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice")))
		ops := d.ops.(*syncOperations)

		err := ops.createNewManifest(ctx, 1)
		require.ErrorIs(t, err, ErrRepeatedCreateConflict)
		assert.True(t, isHardError(err))
		assert.Empty(t, remote.writes)
		assert.Equal(t, uint64(0), d.state(t).ManifestVersion)
		assert.Empty(t, d.messenger.sentTypes())
	})
}

// ── key recovery ─────────────────────────────────────────────────────────────

func TestOperations_UnreadableManifest(t *testing.T) {
	readErr := &adapter.ManifestReadError{Version: 4, Err: adapter.ErrManifestDecryption}

	t.Run("linked device requests keys", func(t *testing.T) {
		remote := newFakeRemote()
		remote.fetchErr = readErr
		d := newTestDevice(t, "laptop", false, remote, newFakeContacts())
		ctx := context.Background()

		require.NoError(t, d.ops.RestoreOrCreate(ctx))

		_, err := d.keys.StorageKey(ctx)
		assert.ErrorIs(t, err, adapter.ErrStorageKeyMissing)
		assert.Equal(t, []models.SyncMessageType{models.SyncMessageRequestKeys}, d.messenger.sentTypes())
	})

	t.Run("primary device recreates", func(t *testing.T) {
		remote := newFakeRemote()
		remote.fetchErr = readErr
		d := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice")))

		require.NoError(t, d.ops.RestoreOrCreate(context.Background()))

		assert.Equal(t, uint64(5), remote.current().Version)
		require.Len(t, remote.writes, 1)
		assert.True(t, remote.writes[0].DeleteAllExistingRecords)
		assert.Equal(t, uint64(5), d.state(t).ManifestVersion)
	})
}

func TestOperations_UnreadableItemsOnLinkedDevice(t *testing.T) {
	remote := newFakeRemote()
	alice := mustIdentifier(t, models.RecordTypeContact)
	remote.seed(models.Manifest{Version: 2, Identifiers: []models.StorageIdentifier{alice}}, contactItem(alice, contact("alice", "Alice")))
	remote.itemsErr = fmt.Errorf("open item: %w", adapter.ErrItemDecryption)

	d := newTestDevice(t, "laptop", false, remote, newFakeContacts())
	ctx := context.Background()

	err := d.ops.RestoreOrCreate(ctx)
	require.ErrorIs(t, err, ErrKeysRequested)
	assert.Equal(t, []models.SyncMessageType{models.SyncMessageRequestKeys}, d.messenger.sentTypes())
	assert.Equal(t, uint64(0), d.state(t).ManifestVersion)
}

func TestOperations_TransportErrorIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteMock := mock.NewMockRemoteStore(ctrl)

	d := newTestDevice(t, "phone", true, newFakeRemote(), newFakeContacts())
	ops := d.ops.(*syncOperations)
	ops.remote = remoteMock

	remoteMock.EXPECT().
		FetchManifest(gomock.Any(), gomock.Nil()).
		Return(adapter.FetchManifestResult{}, adapter.ErrUnauthorized)

	err := ops.RestoreOrCreate(context.Background())
	require.ErrorIs(t, err, adapter.ErrUnauthorized)
}

// ── rotation ─────────────────────────────────────────────────────────────────

func TestOperations_RotateManifest(t *testing.T) {
	t.Run("preserving records", func(t *testing.T) {
		remote := newFakeRemote()
		d := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice"), contact("bob", "Bob")))
		ctx := context.Background()
		require.NoError(t, d.keys.SetRecordIkmCapable(ctx))
		require.NoError(t, d.ops.RestoreOrCreate(ctx))
		before := remote.current()

		require.NoError(t, d.ops.RotateManifest(ctx, RotationPreservingRecordsIfPossible))

		after := remote.current()
		assert.Equal(t, uint64(2), after.Version)
		assert.Equal(t, identifierKeys(before.Identifiers), identifierKeys(after.Identifiers))
		assert.Equal(t, before.RecordIkm, after.RecordIkm)
		assert.Empty(t, remote.writes[len(remote.writes)-1].NewItems)
	})

	t.Run("also rotating records", func(t *testing.T) {
		remote := newFakeRemote()
		d := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice")))
		ctx := context.Background()
		require.NoError(t, d.ops.RestoreOrCreate(ctx))
		before := remote.current()

		require.NoError(t, d.ops.RotateManifest(ctx, RotationAlsoRotatingRecords))

		after := remote.current()
		assert.Equal(t, uint64(2), after.Version)
		assert.NotEqual(t, identifierKeys(before.Identifiers), identifierKeys(after.Identifiers))
		assert.Equal(t, 1, remote.itemCount())
		assert.True(t, remote.writes[len(remote.writes)-1].DeleteAllExistingRecords)
	})

	t.Run("linked device refuses", func(t *testing.T) {
		d := newTestDevice(t, "laptop", false, newFakeRemote(), newFakeContacts())
		err := d.ops.RotateManifest(context.Background(), RotationAlsoRotatingRecords)
		assert.ErrorIs(t, err, ErrNotPrimaryDevice)
	})
}

// ── local bookkeeping ────────────────────────────────────────────────────────

func TestOperations_FlushPendingMutations(t *testing.T) {
	d := newTestDevice(t, "phone", true, newFakeRemote(), newFakeContacts(), withLocalRecipient("self"))
	ctx := context.Background()

	err := d.ops.FlushPendingMutations(ctx, []PendingMutation{
		{Kind: models.RecordTypeContact, LocalID: "self"},
		{Kind: models.RecordTypeContact, LocalID: "alice"},
		{Kind: models.RecordTypeGroupV1, LocalID: "legacy"},
		{Kind: models.RecordType(99), LocalID: "x"},
	})
	require.NoError(t, err)

	st := d.state(t)
	assert.Equal(t, ChangeStateUpdated, st.Account.Change, "local user is redirected to the account")
	assert.Equal(t, map[models.RecipientID]ChangeState{"alice": ChangeStateUpdated}, st.Contacts.Changes)
	assert.Empty(t, st.GroupsV1.Changes)

	pending, err := d.ops.HasPendingChanges(ctx)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestOperations_CleanUp(t *testing.T) {
	d := newTestDevice(t, "phone", true, newFakeRemote(), newFakeContacts(contact("alice", "Alice")))
	ctx := context.Background()

	st := NewState()
	st.Contacts.setIdentifier("alice", mustIdentifier(t, models.RecordTypeContact))
	st.Contacts.setIdentifier("ghost", mustIdentifier(t, models.RecordTypeContact))
	st.UnknownIdentifiersTypeMap = map[models.RecordType][]models.StorageIdentifier{
		models.RecordTypeGroupV2: {mustIdentifier(t, models.RecordTypeGroupV2)},
	}
	d.saveState(t, st)

	require.NoError(t, d.ops.CleanUp(ctx))

	got := d.state(t)
	assert.Equal(t, ChangeStateUpdated, got.Contacts.Changes["ghost"], "entity without a record is deleted remotely")
	assert.NotContains(t, got.Contacts.Changes, models.RecipientID("alice"))
	assert.True(t, got.RefetchLatestManifest, "identifiers of a now known type trigger a refetch")
	assert.Equal(t, ChangeStateUpdated, got.Account.Change)
	assert.Equal(t, "1.0.0", got.UnknownFieldLastCheckedAppVersion)

	version, err := d.kv.Get(ctx, migrationVersionKey)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(currentMigrationVersion), string(version))

	// the migration runs once
	got.Account.Change = ChangeStateUnchanged
	d.saveState(t, got)
	require.NoError(t, d.ops.CleanUp(ctx))
	assert.Equal(t, ChangeStateUnchanged, d.state(t).Account.Change)
}

func TestOperations_CleanUp_CorruptMigrationVersion(t *testing.T) {
	d := newTestDevice(t, "phone", true, newFakeRemote(), newFakeContacts())
	ctx := context.Background()
	require.NoError(t, d.kv.Set(ctx, migrationVersionKey, []byte("two")))

	err := d.ops.CleanUp(ctx)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestOperations_ResetLocalState(t *testing.T) {
	remote := newFakeRemote()
	d := newTestDevice(t, "phone", true, remote, newFakeContacts(contact("alice", "Alice")))
	ctx := context.Background()
	require.NoError(t, d.ops.RestoreOrCreate(ctx))
	require.NoError(t, d.ops.CleanUp(ctx))

	require.NoError(t, d.ops.ResetLocalState(ctx))

	st := d.state(t)
	assert.Equal(t, uint64(0), st.ManifestVersion)
	assert.Empty(t, st.AllIdentifiers())
	_, err := d.kv.Get(ctx, migrationVersionKey)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

// ── retry ────────────────────────────────────────────────────────────────────

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries soft errors", func(t *testing.T) {
		attempts := 0
		err := withRetry(ctx, 3, 0, func(context.Context) error {
			attempts++
			if attempts < 3 {
				return adapter.ErrServiceUnavailable
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("stops on hard errors", func(t *testing.T) {
		attempts := 0
		err := withRetry(ctx, 5, 0, func(context.Context) error {
			attempts++
			return ErrNotPrimaryDevice
		})
		require.ErrorIs(t, err, ErrNotPrimaryDevice)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		attempts := 0
		err := withRetry(ctx, 2, 0, func(context.Context) error {
			attempts++
			return adapter.ErrBadGateway
		})
		require.ErrorIs(t, err, adapter.ErrBadGateway)
		assert.Equal(t, 2, attempts)
	})
}
