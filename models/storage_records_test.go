// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRecord_UnknownFieldsRoundTrip(t *testing.T) {
	raw := []byte(`{"aci":"a-1","givenName":"Ann","nicknameV3":{"given":"A"},"systemNote":"x"}`)

	var record ContactRecord
	require.NoError(t, json.Unmarshal(raw, &record))

	assert.Equal(t, "a-1", record.ACI)
	assert.Equal(t, "Ann", record.GivenName)
	require.Len(t, record.Unknown, 2)
	assert.JSONEq(t, `{"given":"A"}`, string(record.Unknown["nicknameV3"]))

	// изменяем известное поле, неизвестные должны сохраниться
	record.GivenName = "Anna"
	out, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"aci":"a-1","givenName":"Anna","nicknameV3":{"given":"A"},"systemNote":"x"}`, string(out))
}

func TestContactRecord_NoUnknownFields(t *testing.T) {
	var record ContactRecord
	require.NoError(t, json.Unmarshal([]byte(`{"e164":"+15550001"}`), &record))

	assert.True(t, record.Unknown.IsEmpty())
	assert.True(t, record.HasServiceID())
}

func TestKnownFieldsEqual_IgnoresUnknownAndEmptyValues(t *testing.T) {
	a := &GroupV2Record{MasterKey: []byte{1, 2}, Archived: true, Unknown: UnknownFields{"x": json.RawMessage(`1`)}}
	b := &GroupV2Record{MasterKey: []byte{1, 2}, Archived: true}
	assert.True(t, a.KnownFieldsEqual(b))

	b.Blocked = true
	assert.False(t, a.KnownFieldsEqual(b))

	l1 := &StoryDistributionListRecord{Identifier: []byte{1}, RecipientServiceIDs: []string{}}
	l2 := &StoryDistributionListRecord{Identifier: []byte{1}}
	assert.True(t, l1.KnownFieldsEqual(l2))

	var nilRecord *AccountRecord
	assert.True(t, nilRecord.KnownFieldsEqual(nil))
	assert.False(t, nilRecord.KnownFieldsEqual(&AccountRecord{}))
}

func TestStorageRecord_UnknownVariant(t *testing.T) {
	var record StorageRecord
	require.NoError(t, json.Unmarshal([]byte(`{"chatFolder":{"name":"x"}}`), &record))

	assert.Nil(t, record.Contact)
	assert.Nil(t, record.Account)
	assert.Nil(t, record.CallLink)
}

func TestStorageIdentifier(t *testing.T) {
	id, err := GenerateStorageIdentifier(RecordTypeContact)
	require.NoError(t, err)
	require.Len(t, id.Data, StorageIdentifierSize)
	assert.Equal(t, RecordTypeContact, id.Type)

	other, err := GenerateStorageIdentifier(RecordTypeContact)
	require.NoError(t, err)
	assert.False(t, id.Equal(other))

	data, err := json.Marshal(id)
	require.NoError(t, err)
	var decoded StorageIdentifier
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equal(decoded))

	err = json.Unmarshal([]byte(`{"r1":{"data":"AQ==","type":1}}`), &decoded)
	assert.ErrorIs(t, err, ErrMalformedIdentifier)
}

func TestIdentifierSet(t *testing.T) {
	a, _ := GenerateStorageIdentifier(RecordTypeContact)
	b, _ := GenerateStorageIdentifier(RecordTypeGroupV2)
	c, _ := GenerateStorageIdentifier(RecordType(99))

	left := NewIdentifierSet(a, b, c)
	right := NewIdentifierSet(b)

	diff := left.Subtract(right)
	assert.Len(t, diff, 2)
	assert.True(t, diff.Contains(a))
	assert.True(t, diff.Contains(c))
	assert.False(t, diff.Contains(b))

	assert.Equal(t, left.Slice(), left.Slice())
	assert.False(t, c.Type.IsKnown())
	assert.True(t, RecordTypeCallLink.IsKnown())
}
