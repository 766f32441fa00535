// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidVersion       = errors.New("manifest version must be positive")
	ErrEmptyManifest        = errors.New("manifest value is required")
	ErrEmptyItemKey         = errors.New("item key is required")
	ErrEmptyItemValue       = errors.New("item value is required")
	ErrDuplicateItemKey     = errors.New("item key is inserted twice")
	ErrInsertDeleteConflict = errors.New("item key is both inserted and deleted")
	ErrEmptyDeleteKey       = errors.New("delete key is required")
	ErrEmptyReadKeys        = errors.New("read keys list cannot be empty")
	ErrInvalidMessageType   = errors.New("invalid sync message type")
	ErrEmptyKeysPayload     = errors.New("keys message must carry a payload")
)
