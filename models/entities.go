// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// RecipientID is the local identifier of a recipient row.
type RecipientID string

// GroupMasterKey is the hex encoded master key of a group.
type GroupMasterKey string

// DistributionListID is the canonical UUID string of a story distribution list.
type DistributionListID string

// CallLinkRootKey is the hex encoded root key of a call link.
type CallLinkRootKey string

// GroupV1ID is the hex encoded id of a legacy group.
type GroupV1ID string

// Account holds the settings of the local user that are synced through the
// account record.
type Account struct {
	RecipientID          RecipientID `json:"recipient_id"`
	ACI                  string      `json:"aci"`
	E164                 string      `json:"e164,omitempty"`
	Registered           bool        `json:"registered"`
	ProfileKey           []byte      `json:"profile_key,omitempty"`
	GivenName            string      `json:"given_name,omitempty"`
	FamilyName           string      `json:"family_name,omitempty"`
	AvatarURL            string      `json:"avatar_url,omitempty"`
	ReadReceipts         bool        `json:"read_receipts"`
	TypingIndicators     bool        `json:"typing_indicators"`
	LinkPreviews         bool        `json:"link_previews"`
	PhoneNumberSharing   bool        `json:"phone_number_sharing"`
	UniversalExpireTimer uint32      `json:"universal_expire_timer"`
}

// Recipient is a locally known contact.
type Recipient struct {
	ID           RecipientID `json:"id"`
	ACI          string      `json:"aci,omitempty"`
	PNI          string      `json:"pni,omitempty"`
	E164         string      `json:"e164,omitempty"`
	ProfileKey   []byte      `json:"profile_key,omitempty"`
	GivenName    string      `json:"given_name,omitempty"`
	FamilyName   string      `json:"family_name,omitempty"`
	Blocked      bool        `json:"blocked"`
	Whitelisted  bool        `json:"whitelisted"`
	Archived     bool        `json:"archived"`
	MarkedUnread bool        `json:"marked_unread"`
	Hidden       bool        `json:"hidden"`
	MutedUntil   uint64      `json:"muted_until,omitempty"`
	Registered   bool        `json:"registered"`
	// UnregisteredAt is a millisecond timestamp, zero while registered.
	UnregisteredAt uint64 `json:"unregistered_at,omitempty"`
}

// HasServiceID reports whether the recipient can be addressed at all.
func (r Recipient) HasServiceID() bool {
	return r.ACI != "" || r.PNI != "" || r.E164 != ""
}

// GroupV2 is a locally known group.
type GroupV2 struct {
	MasterKey                    GroupMasterKey `json:"master_key"`
	Blocked                      bool           `json:"blocked"`
	Whitelisted                  bool           `json:"whitelisted"`
	Archived                     bool           `json:"archived"`
	MarkedUnread                 bool           `json:"marked_unread"`
	DontNotifyForMentionsIfMuted bool           `json:"dont_notify_for_mentions_if_muted"`
	MutedUntil                   uint64         `json:"muted_until,omitempty"`
}

// DistributionList is a story audience list.
type DistributionList struct {
	ID            DistributionListID `json:"id"`
	Name          string             `json:"name"`
	MemberACIs    []string           `json:"member_acis,omitempty"`
	AllowsReplies bool               `json:"allows_replies"`
	IsBlockList   bool               `json:"is_block_list"`
	// DeletedAt is a millisecond timestamp, zero while the list is alive.
	DeletedAt uint64 `json:"deleted_at,omitempty"`
}

// CallLink is a call link the user created or joined.
type CallLink struct {
	RootKey      CallLinkRootKey `json:"root_key"`
	AdminPasskey []byte          `json:"admin_passkey,omitempty"`
	// AdminDeletedAt is set locally when an admin deletes the link. The row
	// is purged once the deletion is older than the cleanup threshold.
	AdminDeletedAt uint64 `json:"admin_deleted_at,omitempty"`
	// DeletedAt is a millisecond timestamp, zero while the link is alive.
	DeletedAt uint64 `json:"deleted_at,omitempty"`
}

// IsAdmin reports whether the local user holds the admin passkey.
func (c CallLink) IsAdmin() bool {
	return len(c.AdminPasskey) > 0
}
