// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// AccountRecord is the wire form of the local account settings. There is at
// most one per manifest.
type AccountRecord struct {
	ProfileKey           []byte `json:"profileKey,omitempty"`
	GivenName            string `json:"givenName,omitempty"`
	FamilyName           string `json:"familyName,omitempty"`
	AvatarURL            string `json:"avatarUrl,omitempty"`
	ReadReceipts         bool   `json:"readReceipts,omitempty"`
	TypingIndicators     bool   `json:"typingIndicators,omitempty"`
	LinkPreviews         bool   `json:"linkPreviews,omitempty"`
	PhoneNumberSharing   bool   `json:"phoneNumberSharing,omitempty"`
	UniversalExpireTimer uint32 `json:"universalExpireTimer,omitempty"`

	Unknown UnknownFields `json:"-"`
}

type accountRecordFields AccountRecord

func (r *AccountRecord) UnmarshalJSON(b []byte) error {
	var f accountRecordFields
	unknown, err := decodeWithUnknown(b, &f)
	if err != nil {
		return err
	}
	*r = AccountRecord(f)
	r.Unknown = unknown
	return nil
}

func (r AccountRecord) MarshalJSON() ([]byte, error) {
	return encodeWithUnknown(accountRecordFields(r), r.Unknown)
}

// KnownFieldsEqual compares r and other ignoring unknown fields.
func (r *AccountRecord) KnownFieldsEqual(other *AccountRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return knownFieldsEqual(accountRecordFields(*r), accountRecordFields(*other))
}

// ContactRecord is the wire form of one recipient other than the local user.
type ContactRecord struct {
	ACI                     string `json:"aci,omitempty"`
	PNI                     string `json:"pni,omitempty"`
	E164                    string `json:"e164,omitempty"`
	ProfileKey              []byte `json:"profileKey,omitempty"`
	GivenName               string `json:"givenName,omitempty"`
	FamilyName              string `json:"familyName,omitempty"`
	Blocked                 bool   `json:"blocked,omitempty"`
	Whitelisted             bool   `json:"whitelisted,omitempty"`
	Archived                bool   `json:"archived,omitempty"`
	MarkedUnread            bool   `json:"markedUnread,omitempty"`
	Hidden                  bool   `json:"hidden,omitempty"`
	MutedUntilTimestamp     uint64 `json:"mutedUntilTimestamp,omitempty"`
	UnregisteredAtTimestamp uint64 `json:"unregisteredAtTimestamp,omitempty"`

	Unknown UnknownFields `json:"-"`
}

type contactRecordFields ContactRecord

func (r *ContactRecord) UnmarshalJSON(b []byte) error {
	var f contactRecordFields
	unknown, err := decodeWithUnknown(b, &f)
	if err != nil {
		return err
	}
	*r = ContactRecord(f)
	r.Unknown = unknown
	return nil
}

func (r ContactRecord) MarshalJSON() ([]byte, error) {
	return encodeWithUnknown(contactRecordFields(r), r.Unknown)
}

// KnownFieldsEqual compares r and other ignoring unknown fields.
func (r *ContactRecord) KnownFieldsEqual(other *ContactRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return knownFieldsEqual(contactRecordFields(*r), contactRecordFields(*other))
}

// HasServiceID reports whether the record carries any identity at all.
func (r *ContactRecord) HasServiceID() bool {
	return r.ACI != "" || r.PNI != "" || r.E164 != ""
}

// GroupV1Record is a legacy group. Such records are read but never merged.
type GroupV1Record struct {
	ID          []byte `json:"id,omitempty"`
	Blocked     bool   `json:"blocked,omitempty"`
	Whitelisted bool   `json:"whitelisted,omitempty"`
	Archived    bool   `json:"archived,omitempty"`

	Unknown UnknownFields `json:"-"`
}

type groupV1RecordFields GroupV1Record

func (r *GroupV1Record) UnmarshalJSON(b []byte) error {
	var f groupV1RecordFields
	unknown, err := decodeWithUnknown(b, &f)
	if err != nil {
		return err
	}
	*r = GroupV1Record(f)
	r.Unknown = unknown
	return nil
}

func (r GroupV1Record) MarshalJSON() ([]byte, error) {
	return encodeWithUnknown(groupV1RecordFields(r), r.Unknown)
}

// GroupV2Record is the wire form of a group identified by its master key.
type GroupV2Record struct {
	MasterKey                    []byte `json:"masterKey,omitempty"`
	Blocked                      bool   `json:"blocked,omitempty"`
	Whitelisted                  bool   `json:"whitelisted,omitempty"`
	Archived                     bool   `json:"archived,omitempty"`
	MarkedUnread                 bool   `json:"markedUnread,omitempty"`
	DontNotifyForMentionsIfMuted bool   `json:"dontNotifyForMentionsIfMuted,omitempty"`
	MutedUntilTimestamp          uint64 `json:"mutedUntilTimestamp,omitempty"`

	Unknown UnknownFields `json:"-"`
}

type groupV2RecordFields GroupV2Record

func (r *GroupV2Record) UnmarshalJSON(b []byte) error {
	var f groupV2RecordFields
	unknown, err := decodeWithUnknown(b, &f)
	if err != nil {
		return err
	}
	*r = GroupV2Record(f)
	r.Unknown = unknown
	return nil
}

func (r GroupV2Record) MarshalJSON() ([]byte, error) {
	return encodeWithUnknown(groupV2RecordFields(r), r.Unknown)
}

// KnownFieldsEqual compares r and other ignoring unknown fields.
func (r *GroupV2Record) KnownFieldsEqual(other *GroupV2Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return knownFieldsEqual(groupV2RecordFields(*r), groupV2RecordFields(*other))
}

// StoryDistributionListRecord is the wire form of a story audience list.
type StoryDistributionListRecord struct {
	Identifier          []byte   `json:"identifier,omitempty"`
	Name                string   `json:"name,omitempty"`
	RecipientServiceIDs []string `json:"recipientServiceIds,omitempty"`
	DeletedAtTimestamp  uint64   `json:"deletedAtTimestamp,omitempty"`
	AllowsReplies       bool     `json:"allowsReplies,omitempty"`
	IsBlockList         bool     `json:"isBlockList,omitempty"`

	Unknown UnknownFields `json:"-"`
}

type storyDistributionListRecordFields StoryDistributionListRecord

func (r *StoryDistributionListRecord) UnmarshalJSON(b []byte) error {
	var f storyDistributionListRecordFields
	unknown, err := decodeWithUnknown(b, &f)
	if err != nil {
		return err
	}
	*r = StoryDistributionListRecord(f)
	r.Unknown = unknown
	return nil
}

func (r StoryDistributionListRecord) MarshalJSON() ([]byte, error) {
	return encodeWithUnknown(storyDistributionListRecordFields(r), r.Unknown)
}

// KnownFieldsEqual compares r and other ignoring unknown fields.
func (r *StoryDistributionListRecord) KnownFieldsEqual(other *StoryDistributionListRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return knownFieldsEqual(storyDistributionListRecordFields(*r), storyDistributionListRecordFields(*other))
}

// CallLinkRecord is the wire form of a call link owned or joined by the user.
type CallLinkRecord struct {
	RootKey            []byte `json:"rootKey,omitempty"`
	AdminPasskey       []byte `json:"adminPasskey,omitempty"`
	DeletedAtTimestamp uint64 `json:"deletedAtTimestamp,omitempty"`

	Unknown UnknownFields `json:"-"`
}

type callLinkRecordFields CallLinkRecord

func (r *CallLinkRecord) UnmarshalJSON(b []byte) error {
	var f callLinkRecordFields
	unknown, err := decodeWithUnknown(b, &f)
	if err != nil {
		return err
	}
	*r = CallLinkRecord(f)
	r.Unknown = unknown
	return nil
}

func (r CallLinkRecord) MarshalJSON() ([]byte, error) {
	return encodeWithUnknown(callLinkRecordFields(r), r.Unknown)
}

// KnownFieldsEqual compares r and other ignoring unknown fields.
func (r *CallLinkRecord) KnownFieldsEqual(other *CallLinkRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return knownFieldsEqual(callLinkRecordFields(*r), callLinkRecordFields(*other))
}
