// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrMalformedIdentifier is returned when a serialized [StorageIdentifier]
// does not carry identifier bytes.
var ErrMalformedIdentifier = errors.New("malformed storage identifier")

// RecordType tags a [StorageIdentifier] with the kind of record it points to.
//
// Values not listed below are preserved as-is: a newer client may write record
// kinds this build does not know, and they must survive round trips.
type RecordType int32

const (
	RecordTypeUnknown               RecordType = 0
	RecordTypeContact               RecordType = 1
	RecordTypeGroupV1               RecordType = 2
	RecordTypeGroupV2               RecordType = 3
	RecordTypeAccount               RecordType = 4
	RecordTypeStoryDistributionList RecordType = 5
	RecordTypeCallLink              RecordType = 7
)

// KnownRecordTypes lists every record type this build can parse.
var KnownRecordTypes = []RecordType{
	RecordTypeContact,
	RecordTypeGroupV1,
	RecordTypeGroupV2,
	RecordTypeAccount,
	RecordTypeStoryDistributionList,
	RecordTypeCallLink,
}

// IsKnown reports whether t is one of [KnownRecordTypes].
func (t RecordType) IsKnown() bool {
	for _, known := range KnownRecordTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t RecordType) String() string {
	switch t {
	case RecordTypeContact:
		return "contact"
	case RecordTypeGroupV1:
		return "groupv1"
	case RecordTypeGroupV2:
		return "groupv2"
	case RecordTypeAccount:
		return "account"
	case RecordTypeStoryDistributionList:
		return "story_distribution_list"
	case RecordTypeCallLink:
		return "call_link"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// StorageIdentifierSize is the length of freshly generated identifier bytes.
const StorageIdentifierSize = 16

// StorageIdentifier is an opaque, single-use reference to one remote record.
// A record never changes in place: every content change produces a new
// identifier and deletes the old one.
type StorageIdentifier struct {
	Data []byte     `json:"data"`
	Type RecordType `json:"type"`
}

// GenerateStorageIdentifier returns a new random identifier of the given type.
func GenerateStorageIdentifier(recordType RecordType) (StorageIdentifier, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return StorageIdentifier{}, fmt.Errorf("error generating storage identifier: %w", err)
	}
	data := make([]byte, StorageIdentifierSize)
	copy(data, id[:])
	return StorageIdentifier{Data: data, Type: recordType}, nil
}

// Equal reports whether both identifiers carry the same bytes and type.
func (s StorageIdentifier) Equal(other StorageIdentifier) bool {
	return s.Type == other.Type && bytes.Equal(s.Data, other.Data)
}

// Key returns a comparable representation usable as a map key.
func (s StorageIdentifier) Key() string {
	return fmt.Sprintf("%d:%s", int32(s.Type), base64.RawStdEncoding.EncodeToString(s.Data))
}

func (s StorageIdentifier) String() string {
	return s.Type.String() + "/" + base64.RawStdEncoding.EncodeToString(s.Data)
}

// UnmarshalJSON rejects objects without identifier bytes, so that decoding an
// unrelated shape into a StorageIdentifier fails loudly.
func (s *StorageIdentifier) UnmarshalJSON(b []byte) error {
	type plain StorageIdentifier
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if len(p.Data) == 0 {
		return ErrMalformedIdentifier
	}
	*s = StorageIdentifier(p)
	return nil
}

// IdentifierSet is a set of storage identifiers keyed by [StorageIdentifier.Key].
type IdentifierSet map[string]StorageIdentifier

// NewIdentifierSet builds a set from ids.
func NewIdentifierSet(ids ...StorageIdentifier) IdentifierSet {
	set := make(IdentifierSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s IdentifierSet) Add(id StorageIdentifier) {
	s[id.Key()] = id
}

func (s IdentifierSet) Remove(id StorageIdentifier) {
	delete(s, id.Key())
}

func (s IdentifierSet) Contains(id StorageIdentifier) bool {
	_, ok := s[id.Key()]
	return ok
}

// Subtract returns the identifiers of s missing from other.
func (s IdentifierSet) Subtract(other IdentifierSet) IdentifierSet {
	out := make(IdentifierSet)
	for k, id := range s {
		if _, ok := other[k]; !ok {
			out[k] = id
		}
	}
	return out
}

// Slice returns the identifiers in deterministic order.
func (s IdentifierSet) Slice() []StorageIdentifier {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]StorageIdentifier, 0, len(keys))
	for _, k := range keys {
		out = append(out, s[k])
	}
	return out
}
