// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/base64"

	"github.com/MKhiriev/go-storage-sync/models"
)

// Field name constants used to specify which fields should be validated.
const (
	// FieldManifestVersion targets the version of a manifest envelope.
	FieldManifestVersion = "manifest_version"

	// FieldManifestValue targets the sealed manifest body.
	FieldManifestValue = "manifest_value"

	// FieldInsertItems targets the items inserted by a write.
	FieldInsertItems = "insert_items"

	// FieldDeleteKeys targets the item keys deleted by a write.
	FieldDeleteKeys = "delete_keys"

	// FieldReadKeys targets the keys of a read request.
	FieldReadKeys = "read_keys"

	// FieldMessageType targets the type of a sync message.
	FieldMessageType = "message_type"

	// FieldMessagePayload targets the payload of a sync message.
	FieldMessagePayload = "message_payload"
)

var allowedMessageTypes = []models.SyncMessageType{
	models.SyncMessageFetchLatestManifest,
	models.SyncMessageRequestKeys,
	models.SyncMessageKeys,
}

// StorageValidator implements the Validator interface for the requests of
// the remote record store: ManifestEnvelope, WriteOperation, ReadOperation
// and SyncMessage.
type StorageValidator struct {
}

// NewStorageValidator constructs a new StorageValidator and returns it as
// the Validator interface.
func NewStorageValidator() Validator {
	return &StorageValidator{}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj. Both value and pointer forms of each
// supported model are accepted.
//
// Returns ErrUnsupportedType if obj does not match any known model.
func (v *StorageValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.ManifestEnvelope:
		return v.validateManifest(ctx, value, fields...)
	case *models.ManifestEnvelope:
		return v.validateManifest(ctx, *value, fields...)

	case models.WriteOperation:
		return v.validateWriteOperation(ctx, value, fields...)
	case *models.WriteOperation:
		return v.validateWriteOperation(ctx, *value, fields...)

	case models.ReadOperation:
		return v.validateReadOperation(ctx, value, fields...)
	case *models.ReadOperation:
		return v.validateReadOperation(ctx, *value, fields...)

	case models.SyncMessage:
		return v.validateSyncMessage(ctx, value, fields...)
	case *models.SyncMessage:
		return v.validateSyncMessage(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateManifest validates a manifest envelope.
//
// Default validated fields: version, value.
func (v *StorageValidator) validateManifest(_ context.Context, manifest models.ManifestEnvelope, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldManifestVersion, FieldManifestValue}
	}

	for _, f := range fields {
		switch f {
		case FieldManifestVersion:
			if manifest.Version == 0 {
				return ErrInvalidVersion
			}
		case FieldManifestValue:
			if len(manifest.Value) == 0 {
				return ErrEmptyManifest
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

// validateWriteOperation validates one compare-and-swap write.
//
// Default validated fields: the manifest, inserted items, deleted keys.
// Inserted keys must be unique and must not be deleted by the same write.
func (v *StorageValidator) validateWriteOperation(ctx context.Context, op models.WriteOperation, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldManifestVersion, FieldManifestValue, FieldInsertItems, FieldDeleteKeys}
	}

	inserted := make(map[string]struct{}, len(op.InsertItems))
	for _, f := range fields {
		switch f {
		case FieldManifestVersion, FieldManifestValue:
			if err := v.validateManifest(ctx, op.Manifest, f); err != nil {
				return err
			}
		case FieldInsertItems:
			for _, item := range op.InsertItems {
				if len(item.Key) == 0 {
					return ErrEmptyItemKey
				}
				if len(item.Value) == 0 {
					return ErrEmptyItemValue
				}
				key := base64.StdEncoding.EncodeToString(item.Key)
				if _, dup := inserted[key]; dup {
					return ErrDuplicateItemKey
				}
				inserted[key] = struct{}{}
			}
		case FieldDeleteKeys:
			for _, key := range op.DeleteKeys {
				if len(key) == 0 {
					return ErrEmptyDeleteKey
				}
				if _, clash := inserted[base64.StdEncoding.EncodeToString(key)]; clash {
					return ErrInsertDeleteConflict
				}
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

// validateReadOperation validates a batch read.
func (v *StorageValidator) validateReadOperation(_ context.Context, op models.ReadOperation, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldReadKeys}
	}

	for _, f := range fields {
		switch f {
		case FieldReadKeys:
			if len(op.ReadKeys) == 0 {
				return ErrEmptyReadKeys
			}
			for _, key := range op.ReadKeys {
				if len(key) == 0 {
					return ErrEmptyItemKey
				}
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

// validateSyncMessage validates an outgoing sync message. A keys message
// must carry the key.
func (v *StorageValidator) validateSyncMessage(_ context.Context, msg models.SyncMessage, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMessageType, FieldMessagePayload}
	}

	for _, f := range fields {
		switch f {
		case FieldMessageType:
			if !isAllowedMessageType(msg.Type) {
				return ErrInvalidMessageType
			}
		case FieldMessagePayload:
			if msg.Type == models.SyncMessageKeys && len(msg.Payload) == 0 {
				return ErrEmptyKeysPayload
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

// isAllowedMessageType reports whether t is one of allowedMessageTypes.
func isAllowedMessageType(t models.SyncMessageType) bool {
	for _, allowed := range allowedMessageTypes {
		if t == allowed {
			return true
		}
	}
	return false
}
