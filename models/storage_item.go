// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// StorageRecord is the decrypted payload of one [StorageItem]. Exactly one of
// the fields is set for a known record type; all of them are nil when the
// record was written by a newer client with a type this build cannot parse.
type StorageRecord struct {
	Contact               *ContactRecord               `json:"contact,omitempty"`
	GroupV1               *GroupV1Record               `json:"groupV1,omitempty"`
	GroupV2               *GroupV2Record               `json:"groupV2,omitempty"`
	Account               *AccountRecord               `json:"account,omitempty"`
	StoryDistributionList *StoryDistributionListRecord `json:"storyDistributionList,omitempty"`
	CallLink              *CallLinkRecord              `json:"callLink,omitempty"`
}

// StorageItem pairs a [StorageIdentifier] with its decrypted record.
type StorageItem struct {
	Identifier StorageIdentifier
	Record     StorageRecord
}

// Type returns the record type carried by the identifier.
func (i StorageItem) Type() RecordType {
	return i.Identifier.Type
}

// Manifest is the remote, versioned index of live record identifiers.
type Manifest struct {
	Version      uint64              `json:"version"`
	SourceDevice string              `json:"sourceDevice,omitempty"`
	RecordIkm    []byte              `json:"recordIkm,omitempty"`
	Identifiers  []StorageIdentifier `json:"identifiers"`
}

// IdentifierSet returns the manifest identifiers as a set.
func (m Manifest) IdentifierSet() IdentifierSet {
	return NewIdentifierSet(m.Identifiers...)
}

// HasRecordIkm reports whether records are encrypted with a dedicated seed.
func (m Manifest) HasRecordIkm() bool {
	return len(m.RecordIkm) > 0
}
