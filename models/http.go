// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ManifestEnvelope is the encrypted manifest as stored by the remote store.
// The store only ever looks at Version.
type ManifestEnvelope struct {
	Version uint64 `json:"version"`
	Value   []byte `json:"value"`
}

// ItemEnvelope is one encrypted record keyed by its identifier bytes.
type ItemEnvelope struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// WriteOperation replaces the manifest and applies item inserts and deletes
// atomically. The store accepts it only when Manifest.Version is exactly one
// greater than the stored version, or when no manifest exists yet.
type WriteOperation struct {
	Manifest    ManifestEnvelope `json:"manifest"`
	InsertItems []ItemEnvelope   `json:"insert_items,omitempty"`
	DeleteKeys  [][]byte         `json:"delete_keys,omitempty"`
	// DeleteAll drops every stored item before the inserts are applied.
	DeleteAll bool `json:"delete_all,omitempty"`
}

// ReadOperation asks for the items stored under ReadKeys.
type ReadOperation struct {
	ReadKeys [][]byte `json:"read_keys"`
}

// ReadResponse holds the items found for a [ReadOperation]. Missing keys are
// silently omitted.
type ReadResponse struct {
	Items []ItemEnvelope `json:"items"`
}

// SyncMessageType names a cross-device notification.
type SyncMessageType string

const (
	// SyncMessageFetchLatestManifest asks peers to restore the newest manifest.
	SyncMessageFetchLatestManifest SyncMessageType = "fetch_latest_manifest"
	// SyncMessageRequestKeys asks the primary device to resend the storage key.
	SyncMessageRequestKeys SyncMessageType = "request_keys"
	// SyncMessageKeys carries the storage key to linked devices.
	SyncMessageKeys SyncMessageType = "keys"
)

// SyncMessage is a notification exchanged between devices of one account.
type SyncMessage struct {
	ID           int64           `json:"id,omitempty"`
	Type         SyncMessageType `json:"type"`
	SourceDevice string          `json:"source_device,omitempty"`
	Payload      []byte          `json:"payload,omitempty"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
}

// SyncMessagesResponse is the list returned to a polling device.
type SyncMessagesResponse struct {
	Messages []SyncMessage `json:"messages"`
	Length   int           `json:"length"`
}
