// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/models"
)

// PendingMutation notes that one local entity changed. LocalID is empty for
// the account.
type PendingMutation struct {
	Kind    models.RecordType
	LocalID string
}

// RotationMode selects how much a manifest rotation rewrites.
type RotationMode int

const (
	// RotationPreservingRecordsIfPossible writes a new manifest that reuses
	// the stored records when they are encrypted with a recordIkm.
	RotationPreservingRecordsIfPossible RotationMode = iota
	// RotationAlsoRotatingRecords recreates the manifest and every record.
	RotationAlsoRotatingRecords
)

func (m RotationMode) String() string {
	switch m {
	case RotationPreservingRecordsIfPossible:
		return "preserving_records_if_possible"
	case RotationAlsoRotatingRecords:
		return "also_rotating_records"
	default:
		return "unknown"
	}
}

// stricter returns the mode that rewrites more of m and other.
func (m RotationMode) stricter(other RotationMode) RotationMode {
	if other > m {
		return other
	}
	return m
}

// MergeResult is the verdict of [RecordUpdater.MergeRecord]. An invalid
// record carried no usable identity and is dropped.
type MergeResult[ID comparable] struct {
	Invalid     bool
	NeedsUpdate bool
	ID          ID
}

// Merged reports a record applied to the local entity id. needsUpdate is
// true when local state holds data the remote record lacks.
func Merged[ID comparable](id ID, needsUpdate bool) MergeResult[ID] {
	return MergeResult[ID]{ID: id, NeedsUpdate: needsUpdate}
}

// InvalidRecord reports a record that cannot be mapped to any local entity.
func InvalidRecord[ID comparable]() MergeResult[ID] {
	return MergeResult[ID]{Invalid: true}
}

// RecordUpdaters holds one updater per synced record kind.
type RecordUpdaters struct {
	Account               RecordUpdater[Singleton, models.AccountRecord]
	Contact               RecordUpdater[models.RecipientID, models.ContactRecord]
	GroupV1               RecordUpdater[models.GroupV1ID, models.GroupV1Record]
	GroupV2               RecordUpdater[models.GroupMasterKey, models.GroupV2Record]
	StoryDistributionList RecordUpdater[models.DistributionListID, models.StoryDistributionListRecord]
	CallLink              RecordUpdater[models.CallLinkRootKey, models.CallLinkRecord]
}

// recordChanges collects the outcome of building records for upload.
type recordChanges struct {
	items   []models.StorageItem
	deleted []models.StorageIdentifier
}

// stateUpdater binds a typed RecordUpdater to its slice of [State] so that
// operations can treat every record kind alike.
type stateUpdater interface {
	recordType() models.RecordType
	markUpdated(st *State, localID string)
	// buildChanged rebuilds every entity marked as updated under a fresh
	// identifier and clears its change marker.
	buildChanged(ctx context.Context, st *State, changes *recordChanges) error
	// buildAll builds every local entity into a fresh state.
	buildAll(ctx context.Context, st *State, changes *recordChanges) error
	owns(item models.StorageItem) bool
	shouldDefer(item models.StorageItem) bool
	merge(ctx context.Context, st *State, item models.StorageItem) error
	// markOrphans marks tracked entities missing from remote as updated when
	// they must be uploaded again.
	markOrphans(ctx context.Context, st *State, remote models.IdentifierSet) (int, error)
	remergeUnknownFields(ctx context.Context, st *State) error
	// markUnbuildable marks tracked entities without a record as updated so
	// that the next backup deletes them remotely.
	markUnbuildable(ctx context.Context, st *State) (int, error)
}

// ── keyed ────────────────────────────────────────────────────────────────────

type keyedStateUpdater[ID ~string, R any] struct {
	kind    models.RecordType
	updater RecordUpdater[ID, R]
	entity  func(*State) *EntityState[ID, R]
	unwrap  func(models.StorageRecord) (R, bool)
	wrap    func(R) models.StorageRecord
	// readOnly kinds are merged but never written back.
	readOnly bool
}

func (u *keyedStateUpdater[ID, R]) recordType() models.RecordType {
	return u.kind
}

func (u *keyedStateUpdater[ID, R]) markUpdated(st *State, localID string) {
	if u.readOnly {
		return
	}
	u.entity(st).setChange(ID(localID), ChangeStateUpdated)
}

func (u *keyedStateUpdater[ID, R]) buildChanged(ctx context.Context, st *State, changes *recordChanges) error {
	if u.readOnly {
		return nil
	}

	e := u.entity(st)
	pending := e.Changes
	e.Changes = nil

	for _, id := range sortedKeys(pending) {
		if pending[id] != ChangeStateUpdated {
			continue
		}

		var unknown models.UnknownFields
		if cached, ok := e.RecordsWithUnknownFields[id]; ok {
			unknown = u.updater.UnknownFields(cached)
		}

		record, ok, err := u.updater.BuildRecord(ctx, id, unknown)
		if err != nil {
			return fmt.Errorf("build %s record: %w", u.kind, err)
		}

		if old, tracked := e.Identifiers[id]; tracked {
			changes.deleted = append(changes.deleted, old)
		}
		e.forget(id)
		if !ok {
			continue
		}

		identifier, err := models.GenerateStorageIdentifier(u.kind)
		if err != nil {
			return err
		}
		e.setIdentifier(id, identifier)
		if !u.updater.UnknownFields(record).IsEmpty() {
			e.setRecord(id, record)
		}
		changes.items = append(changes.items, models.StorageItem{Identifier: identifier, Record: u.wrap(record)})
	}
	return nil
}

func (u *keyedStateUpdater[ID, R]) buildAll(ctx context.Context, st *State, changes *recordChanges) error {
	if u.readOnly {
		return nil
	}

	ids, err := u.updater.LocalIDs(ctx)
	if err != nil {
		return fmt.Errorf("list local %s entities: %w", u.kind, err)
	}

	e := u.entity(st)
	for _, id := range ids {
		record, ok, err := u.updater.BuildRecord(ctx, id, nil)
		if err != nil {
			return fmt.Errorf("build %s record: %w", u.kind, err)
		}
		if !ok {
			continue
		}

		identifier, err := models.GenerateStorageIdentifier(u.kind)
		if err != nil {
			return err
		}
		e.setIdentifier(id, identifier)
		changes.items = append(changes.items, models.StorageItem{Identifier: identifier, Record: u.wrap(record)})
	}
	return nil
}

func (u *keyedStateUpdater[ID, R]) owns(item models.StorageItem) bool {
	_, ok := u.unwrap(item.Record)
	return ok
}

func (u *keyedStateUpdater[ID, R]) shouldDefer(item models.StorageItem) bool {
	record, ok := u.unwrap(item.Record)
	return ok && u.updater.ShouldDeferMerge(record)
}

func (u *keyedStateUpdater[ID, R]) merge(ctx context.Context, st *State, item models.StorageItem) error {
	record, ok := u.unwrap(item.Record)
	if !ok {
		return fmt.Errorf("item %s is not a %s record", item.Identifier, u.kind)
	}
	return u.mergeRecord(ctx, st, item.Identifier, record)
}

func (u *keyedStateUpdater[ID, R]) mergeRecord(ctx context.Context, st *State, identifier models.StorageIdentifier, record R) error {
	result, err := u.updater.MergeRecord(ctx, record)
	if err != nil {
		return fmt.Errorf("merge %s record: %w", u.kind, err)
	}
	if result.Invalid {
		logger.FromContext(ctx).Warn().
			Str("func", "*keyedStateUpdater.mergeRecord").
			Stringer("identifier", identifier).
			Msg("dropping remote record without usable identity")
		return nil
	}

	e := u.entity(st)
	e.setIdentifier(result.ID, identifier)
	if result.NeedsUpdate && !u.readOnly {
		e.setChange(result.ID, ChangeStateUpdated)
	} else {
		e.setChange(result.ID, ChangeStateUnchanged)
	}
	if u.updater.UnknownFields(record).IsEmpty() {
		delete(e.RecordsWithUnknownFields, result.ID)
	} else {
		e.setRecord(result.ID, record)
	}
	return nil
}

func (u *keyedStateUpdater[ID, R]) markOrphans(ctx context.Context, st *State, remote models.IdentifierSet) (int, error) {
	if u.readOnly {
		return 0, nil
	}

	e := u.entity(st)
	marked := 0
	for _, id := range sortedKeys(e.Identifiers) {
		if remote.Contains(e.Identifiers[id]) {
			continue
		}
		readd, err := u.updater.ShouldReaddOrphan(ctx, id)
		if err != nil {
			return marked, err
		}
		if !readd {
			continue
		}
		e.setChange(id, ChangeStateUpdated)
		marked++
	}
	return marked, nil
}

func (u *keyedStateUpdater[ID, R]) remergeUnknownFields(ctx context.Context, st *State) error {
	e := u.entity(st)
	for _, id := range sortedKeys(e.RecordsWithUnknownFields) {
		record := e.RecordsWithUnknownFields[id]
		identifier, tracked := e.Identifiers[id]
		if !tracked {
			delete(e.RecordsWithUnknownFields, id)
			continue
		}
		if err := u.mergeRecord(ctx, st, identifier, record); err != nil {
			return err
		}
	}
	return nil
}

func (u *keyedStateUpdater[ID, R]) markUnbuildable(ctx context.Context, st *State) (int, error) {
	if u.readOnly {
		return 0, nil
	}

	e := u.entity(st)
	marked := 0
	for _, id := range sortedKeys(e.Identifiers) {
		if e.Changes[id] == ChangeStateUpdated {
			continue
		}
		_, ok, err := u.updater.BuildRecord(ctx, id, nil)
		if err != nil {
			return marked, fmt.Errorf("build %s record: %w", u.kind, err)
		}
		if ok {
			continue
		}
		e.setChange(id, ChangeStateUpdated)
		marked++
	}
	return marked, nil
}

// ── singleton ────────────────────────────────────────────────────────────────

type singletonStateUpdater[R any] struct {
	kind    models.RecordType
	updater RecordUpdater[Singleton, R]
	entity  func(*State) *SingletonState[R]
	unwrap  func(models.StorageRecord) (R, bool)
	wrap    func(R) models.StorageRecord
}

func (u *singletonStateUpdater[R]) recordType() models.RecordType {
	return u.kind
}

func (u *singletonStateUpdater[R]) markUpdated(st *State, _ string) {
	u.entity(st).Change = ChangeStateUpdated
}

func (u *singletonStateUpdater[R]) buildChanged(ctx context.Context, st *State, changes *recordChanges) error {
	e := u.entity(st)
	if e.Change != ChangeStateUpdated {
		return nil
	}
	e.Change = ChangeStateUnchanged

	var unknown models.UnknownFields
	if e.RecordWithUnknownFields != nil {
		unknown = u.updater.UnknownFields(*e.RecordWithUnknownFields)
	}

	record, ok, err := u.updater.BuildRecord(ctx, Singleton{}, unknown)
	if err != nil {
		return fmt.Errorf("build %s record: %w", u.kind, err)
	}

	if e.Identifier != nil {
		changes.deleted = append(changes.deleted, *e.Identifier)
	}
	e.Identifier = nil
	e.RecordWithUnknownFields = nil
	if !ok {
		return nil
	}

	identifier, err := models.GenerateStorageIdentifier(u.kind)
	if err != nil {
		return err
	}
	e.Identifier = &identifier
	if !u.updater.UnknownFields(record).IsEmpty() {
		e.RecordWithUnknownFields = &record
	}
	changes.items = append(changes.items, models.StorageItem{Identifier: identifier, Record: u.wrap(record)})
	return nil
}

func (u *singletonStateUpdater[R]) buildAll(ctx context.Context, st *State, changes *recordChanges) error {
	record, ok, err := u.updater.BuildRecord(ctx, Singleton{}, nil)
	if err != nil {
		return fmt.Errorf("build %s record: %w", u.kind, err)
	}
	if !ok {
		return nil
	}

	identifier, err := models.GenerateStorageIdentifier(u.kind)
	if err != nil {
		return err
	}
	u.entity(st).Identifier = &identifier
	changes.items = append(changes.items, models.StorageItem{Identifier: identifier, Record: u.wrap(record)})
	return nil
}

func (u *singletonStateUpdater[R]) owns(item models.StorageItem) bool {
	_, ok := u.unwrap(item.Record)
	return ok
}

func (u *singletonStateUpdater[R]) shouldDefer(models.StorageItem) bool {
	return false
}

func (u *singletonStateUpdater[R]) merge(ctx context.Context, st *State, item models.StorageItem) error {
	record, ok := u.unwrap(item.Record)
	if !ok {
		return fmt.Errorf("item %s is not a %s record", item.Identifier, u.kind)
	}
	return u.mergeRecord(ctx, st, item.Identifier, record)
}

func (u *singletonStateUpdater[R]) mergeRecord(ctx context.Context, st *State, identifier models.StorageIdentifier, record R) error {
	result, err := u.updater.MergeRecord(ctx, record)
	if err != nil {
		return fmt.Errorf("merge %s record: %w", u.kind, err)
	}

	e := u.entity(st)
	if result.Invalid {
		// the local account always exists, so the remote copy is replaced
		e.Change = ChangeStateUpdated
		return nil
	}

	e.Identifier = &identifier
	if result.NeedsUpdate {
		e.Change = ChangeStateUpdated
	} else {
		e.Change = ChangeStateUnchanged
	}
	if u.updater.UnknownFields(record).IsEmpty() {
		e.RecordWithUnknownFields = nil
	} else {
		e.RecordWithUnknownFields = &record
	}
	return nil
}

// markOrphans marks the singleton updated when remote does not carry the
// tracked identifier.
func (u *singletonStateUpdater[R]) markOrphans(_ context.Context, st *State, remote models.IdentifierSet) (int, error) {
	e := u.entity(st)
	if e.Identifier != nil && remote.Contains(*e.Identifier) {
		return 0, nil
	}
	e.Change = ChangeStateUpdated
	return 1, nil
}

func (u *singletonStateUpdater[R]) remergeUnknownFields(ctx context.Context, st *State) error {
	e := u.entity(st)
	if e.RecordWithUnknownFields == nil {
		return nil
	}
	if e.Identifier == nil {
		e.RecordWithUnknownFields = nil
		return nil
	}
	return u.mergeRecord(ctx, st, *e.Identifier, *e.RecordWithUnknownFields)
}

func (u *singletonStateUpdater[R]) markUnbuildable(context.Context, *State) (int, error) {
	return 0, nil
}

// ── wiring ───────────────────────────────────────────────────────────────────

// updaterSet is the account updater plus every keyed updater, in the order
// records are merged and built.
type updaterSet struct {
	account *singletonStateUpdater[models.AccountRecord]
	keyed   []stateUpdater
}

func newUpdaterSet(u RecordUpdaters) updaterSet {
	return updaterSet{
		account: &singletonStateUpdater[models.AccountRecord]{
			kind:    models.RecordTypeAccount,
			updater: u.Account,
			entity:  func(st *State) *SingletonState[models.AccountRecord] { return &st.Account },
			unwrap: func(r models.StorageRecord) (models.AccountRecord, bool) {
				if r.Account == nil {
					return models.AccountRecord{}, false
				}
				return *r.Account, true
			},
			wrap: func(r models.AccountRecord) models.StorageRecord { return models.StorageRecord{Account: &r} },
		},
		keyed: []stateUpdater{
			&keyedStateUpdater[models.RecipientID, models.ContactRecord]{
				kind:    models.RecordTypeContact,
				updater: u.Contact,
				entity: func(st *State) *EntityState[models.RecipientID, models.ContactRecord] {
					return &st.Contacts
				},
				unwrap: func(r models.StorageRecord) (models.ContactRecord, bool) {
					if r.Contact == nil {
						return models.ContactRecord{}, false
					}
					return *r.Contact, true
				},
				wrap: func(r models.ContactRecord) models.StorageRecord { return models.StorageRecord{Contact: &r} },
			},
			&keyedStateUpdater[models.GroupV1ID, models.GroupV1Record]{
				kind:    models.RecordTypeGroupV1,
				updater: u.GroupV1,
				entity: func(st *State) *EntityState[models.GroupV1ID, models.GroupV1Record] {
					return &st.GroupsV1
				},
				unwrap: func(r models.StorageRecord) (models.GroupV1Record, bool) {
					if r.GroupV1 == nil {
						return models.GroupV1Record{}, false
					}
					return *r.GroupV1, true
				},
				wrap:     func(r models.GroupV1Record) models.StorageRecord { return models.StorageRecord{GroupV1: &r} },
				readOnly: true,
			},
			&keyedStateUpdater[models.GroupMasterKey, models.GroupV2Record]{
				kind:    models.RecordTypeGroupV2,
				updater: u.GroupV2,
				entity: func(st *State) *EntityState[models.GroupMasterKey, models.GroupV2Record] {
					return &st.GroupsV2
				},
				unwrap: func(r models.StorageRecord) (models.GroupV2Record, bool) {
					if r.GroupV2 == nil {
						return models.GroupV2Record{}, false
					}
					return *r.GroupV2, true
				},
				wrap: func(r models.GroupV2Record) models.StorageRecord { return models.StorageRecord{GroupV2: &r} },
			},
			&keyedStateUpdater[models.DistributionListID, models.StoryDistributionListRecord]{
				kind:    models.RecordTypeStoryDistributionList,
				updater: u.StoryDistributionList,
				entity: func(st *State) *EntityState[models.DistributionListID, models.StoryDistributionListRecord] {
					return &st.DistributionLists
				},
				unwrap: func(r models.StorageRecord) (models.StoryDistributionListRecord, bool) {
					if r.StoryDistributionList == nil {
						return models.StoryDistributionListRecord{}, false
					}
					return *r.StoryDistributionList, true
				},
				wrap: func(r models.StoryDistributionListRecord) models.StorageRecord {
					return models.StorageRecord{StoryDistributionList: &r}
				},
			},
			&keyedStateUpdater[models.CallLinkRootKey, models.CallLinkRecord]{
				kind:    models.RecordTypeCallLink,
				updater: u.CallLink,
				entity: func(st *State) *EntityState[models.CallLinkRootKey, models.CallLinkRecord] {
					return &st.CallLinks
				},
				unwrap: func(r models.StorageRecord) (models.CallLinkRecord, bool) {
					if r.CallLink == nil {
						return models.CallLinkRecord{}, false
					}
					return *r.CallLink, true
				},
				wrap: func(r models.CallLinkRecord) models.StorageRecord { return models.StorageRecord{CallLink: &r} },
			},
		},
	}
}

// all returns the account updater followed by the keyed ones.
func (s updaterSet) all() []stateUpdater {
	return append([]stateUpdater{s.account}, s.keyed...)
}

// forType returns the updater of kind.
func (s updaterSet) forType(kind models.RecordType) (stateUpdater, bool) {
	for _, u := range s.all() {
		if u.recordType() == kind {
			return u, true
		}
	}
	return nil, false
}

// owner returns the keyed updater that understands item.
func (s updaterSet) owner(item models.StorageItem) (stateUpdater, bool) {
	for _, u := range s.keyed {
		if u.owns(item) {
			return u, true
		}
	}
	return nil, false
}
