// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/models"
)

// bidirectionalIdentifierMap is how older builds persisted identifier maps:
// both directions of the mapping were written out.
type bidirectionalIdentifierMap[ID ~string] struct {
	Forward  map[ID]models.StorageIdentifier `json:"forwardDictionary"`
	Backward map[string]ID                   `json:"backwardDictionary,omitempty"`
}

type legacyEntityState[ID ~string, R any] struct {
	Identifiers              bidirectionalIdentifierMap[ID] `json:"identifiers"`
	Changes                  map[ID]ChangeState             `json:"changes,omitempty"`
	RecordsWithUnknownFields map[ID]R                       `json:"recordsWithUnknownFields,omitempty"`
}

func (l legacyEntityState[ID, R]) current() EntityState[ID, R] {
	return EntityState[ID, R]{
		Identifiers:              l.Identifiers.Forward,
		Changes:                  l.Changes,
		RecordsWithUnknownFields: l.RecordsWithUnknownFields,
	}
}

// legacyState shadows the identifier maps that older builds wrote in the
// bidirectional shape. Every other member decodes through the embedded
// State.
type legacyState struct {
	State
	Contacts legacyEntityState[models.RecipientID, models.ContactRecord]    `json:"contacts"`
	GroupsV1 legacyEntityState[models.GroupV1ID, models.GroupV1Record]      `json:"groupsV1"`
	GroupsV2 legacyEntityState[models.GroupMasterKey, models.GroupV2Record] `json:"groupsV2"`
}

func (l legacyState) current() State {
	st := l.State
	st.Contacts = l.Contacts.current()
	st.GroupsV1 = l.GroupsV1.current()
	st.GroupsV2 = l.GroupsV2.current()
	return st
}

// encodeState serialises st for persistence.
func encodeState(st State) ([]byte, error) {
	return json.Marshal(st)
}

// decodeState parses a persisted state blob. The current schema is tried
// first; only a shape mismatch falls back to the bidirectional identifier
// map layout of older builds.
func decodeState(data []byte) (State, error) {
	var st State
	err := json.Unmarshal(data, &st)
	if err == nil {
		st.normalize()
		return st, nil
	}
	if !isShapeMismatch(err) {
		return State{}, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	var legacy legacyState
	if legacyErr := json.Unmarshal(data, &legacy); legacyErr != nil {
		return State{}, fmt.Errorf("%w: %w", ErrCorruptState, errors.Join(err, legacyErr))
	}

	st = legacy.current()
	st.normalize()
	return st, nil
}

func isShapeMismatch(err error) bool {
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr) || errors.Is(err, models.ErrMalformedIdentifier)
}
