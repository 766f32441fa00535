// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/MKhiriev/go-storage-sync/models"
)

// Singleton is the local identity of entity kinds with exactly one instance,
// such as the account.
type Singleton struct{}

// ChangeState marks whether a local entity must be uploaded on the next
// backup.
type ChangeState int

const (
	ChangeStateUnchanged ChangeState = 0
	ChangeStateUpdated   ChangeState = 1

	// changeStateDeleted is only ever read from old state blobs.
	changeStateDeleted = 2
)

func (c *ChangeState) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch v {
	case int(ChangeStateUnchanged), changeStateDeleted:
		*c = ChangeStateUnchanged
	case int(ChangeStateUpdated):
		*c = ChangeStateUpdated
	default:
		return fmt.Errorf("%w: %d", ErrUnknownChangeState, v)
	}
	return nil
}

// EntityState is the bookkeeping of one keyed entity kind: the remote
// identifier of every synced entity, pending local changes, and records
// carrying fields this build does not understand.
type EntityState[ID ~string, R any] struct {
	Identifiers              map[ID]models.StorageIdentifier `json:"identifiers,omitempty"`
	Changes                  map[ID]ChangeState              `json:"changes,omitempty"`
	RecordsWithUnknownFields map[ID]R                        `json:"recordsWithUnknownFields,omitempty"`
}

func (e *EntityState[ID, R]) setIdentifier(id ID, identifier models.StorageIdentifier) {
	if e.Identifiers == nil {
		e.Identifiers = make(map[ID]models.StorageIdentifier)
	}
	e.Identifiers[id] = identifier
}

func (e *EntityState[ID, R]) setChange(id ID, change ChangeState) {
	if change == ChangeStateUnchanged {
		delete(e.Changes, id)
		return
	}
	if e.Changes == nil {
		e.Changes = make(map[ID]ChangeState)
	}
	e.Changes[id] = change
}

func (e *EntityState[ID, R]) setRecord(id ID, record R) {
	if e.RecordsWithUnknownFields == nil {
		e.RecordsWithUnknownFields = make(map[ID]R)
	}
	e.RecordsWithUnknownFields[id] = record
}

func (e *EntityState[ID, R]) forget(id ID) {
	delete(e.Identifiers, id)
	delete(e.Changes, id)
	delete(e.RecordsWithUnknownFields, id)
}

// identifierOwner returns the local entity currently mapped to identifier.
func (e *EntityState[ID, R]) identifierOwner(identifier models.StorageIdentifier) (ID, bool) {
	for id, sid := range e.Identifiers {
		if sid.Equal(identifier) {
			return id, true
		}
	}
	var zero ID
	return zero, false
}

func (e *EntityState[ID, R]) hasUpdates() bool {
	for _, change := range e.Changes {
		if change == ChangeStateUpdated {
			return true
		}
	}
	return false
}

// SingletonState is the bookkeeping of an entity kind with one instance.
type SingletonState[R any] struct {
	Identifier              *models.StorageIdentifier `json:"identifier,omitempty"`
	Change                  ChangeState               `json:"change"`
	RecordWithUnknownFields *R                        `json:"recordWithUnknownFields,omitempty"`
}

// State is the persisted view of the remote store held by one device.
type State struct {
	ManifestVersion       uint64 `json:"manifestVersion"`
	RefetchLatestManifest bool   `json:"refetchLatestManifest,omitempty"`
	ManifestRecordIkm     []byte `json:"manifestRecordIkm,omitempty"`
	ConsecutiveConflicts  int    `json:"consecutiveConflicts"`

	Account           SingletonState[models.AccountRecord]                                       `json:"account"`
	Contacts          EntityState[models.RecipientID, models.ContactRecord]                      `json:"contacts"`
	GroupsV1          EntityState[models.GroupV1ID, models.GroupV1Record]                        `json:"groupsV1"`
	GroupsV2          EntityState[models.GroupMasterKey, models.GroupV2Record]                   `json:"groupsV2"`
	DistributionLists EntityState[models.DistributionListID, models.StoryDistributionListRecord] `json:"distributionLists"`
	CallLinks         EntityState[models.CallLinkRootKey, models.CallLinkRecord]                 `json:"callLinks"`

	// UnknownIdentifiersTypeMap holds identifiers of record types this build
	// could not interpret, keyed by type, so they survive every rewrite.
	UnknownIdentifiersTypeMap map[models.RecordType][]models.StorageIdentifier `json:"unknownIdentifiersTypeMap,omitempty"`

	// InvalidIdentifiers are remote identifiers whose records were rejected.
	// They are deleted by the next manifest write.
	InvalidIdentifiers []models.StorageIdentifier `json:"invalidIdentifiers,omitempty"`

	// UnknownFieldLastCheckedAppVersion is the app version that last
	// re-merged the cached records with unknown fields.
	UnknownFieldLastCheckedAppVersion string `json:"unknownFieldLastCheckedAppVersion,omitempty"`
}

// NewState returns the state of a device that never synced.
func NewState() State {
	return State{}
}

// normalize drops bookkeeping that is never acted on.
func (s *State) normalize() {
	// legacy groups are never rebuilt
	s.GroupsV1.Changes = nil
}

// UnknownIdentifiers returns every identifier of an unknown record type.
func (s *State) UnknownIdentifiers() []models.StorageIdentifier {
	var out []models.StorageIdentifier
	for _, typ := range s.unknownTypes() {
		out = append(out, s.UnknownIdentifiersTypeMap[typ]...)
	}
	return out
}

func (s *State) unknownTypes() []models.RecordType {
	types := make([]models.RecordType, 0, len(s.UnknownIdentifiersTypeMap))
	for typ := range s.UnknownIdentifiersTypeMap {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

func (s *State) addUnknownIdentifier(identifier models.StorageIdentifier) {
	if s.UnknownIdentifiersTypeMap == nil {
		s.UnknownIdentifiersTypeMap = make(map[models.RecordType][]models.StorageIdentifier)
	}
	for _, existing := range s.UnknownIdentifiersTypeMap[identifier.Type] {
		if existing.Equal(identifier) {
			return
		}
	}
	s.UnknownIdentifiersTypeMap[identifier.Type] = append(s.UnknownIdentifiersTypeMap[identifier.Type], identifier)
}

// knownTypeUnknownIdentifiers returns unknown identifiers whose type this
// build now understands.
func (s *State) knownTypeUnknownIdentifiers() []models.StorageIdentifier {
	var out []models.StorageIdentifier
	for _, typ := range s.unknownTypes() {
		if typ.IsKnown() {
			out = append(out, s.UnknownIdentifiersTypeMap[typ]...)
		}
	}
	return out
}

// retainUnknownIdentifiers keeps only the unknown identifiers contained in
// remote.
func (s *State) retainUnknownIdentifiers(remote models.IdentifierSet) {
	for typ, ids := range s.UnknownIdentifiersTypeMap {
		kept := ids[:0]
		for _, id := range ids {
			if remote.Contains(id) {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(s.UnknownIdentifiersTypeMap, typ)
			continue
		}
		s.UnknownIdentifiersTypeMap[typ] = kept
	}
}

func (s *State) dropKnownTypeUnknownIdentifiers() {
	for typ := range s.UnknownIdentifiersTypeMap {
		if typ.IsKnown() {
			delete(s.UnknownIdentifiersTypeMap, typ)
		}
	}
}

// AllIdentifiers returns every identifier the device believes is live
// remotely, including unknown ones, in a stable order.
func (s *State) AllIdentifiers() []models.StorageIdentifier {
	var out []models.StorageIdentifier
	if s.Account.Identifier != nil {
		out = append(out, *s.Account.Identifier)
	}
	out = appendIdentifiers(out, s.Contacts.Identifiers)
	out = appendIdentifiers(out, s.GroupsV1.Identifiers)
	out = appendIdentifiers(out, s.GroupsV2.Identifiers)
	out = appendIdentifiers(out, s.DistributionLists.Identifiers)
	out = appendIdentifiers(out, s.CallLinks.Identifiers)
	return append(out, s.UnknownIdentifiers()...)
}

func appendIdentifiers[ID ~string](out []models.StorageIdentifier, m map[ID]models.StorageIdentifier) []models.StorageIdentifier {
	for _, id := range sortedKeys(m) {
		out = append(out, m[id])
	}
	return out
}

// HasPendingChanges reports whether any entity is marked as updated.
func (s *State) HasPendingChanges() bool {
	return s.Account.Change == ChangeStateUpdated ||
		s.Contacts.hasUpdates() ||
		s.GroupsV2.hasUpdates() ||
		s.DistributionLists.hasUpdates() ||
		s.CallLinks.hasUpdates()
}

// takeInvalidIdentifiers returns and clears the invalid identifiers.
func (s *State) takeInvalidIdentifiers() []models.StorageIdentifier {
	out := s.InvalidIdentifiers
	s.InvalidIdentifiers = nil
	return out
}

func sortedKeys[ID ~string, V any](m map[ID]V) []ID {
	keys := make([]ID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b ID) int {
		return strings.Compare(string(a), string(b))
	})
	return keys
}
