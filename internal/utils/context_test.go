// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestAccountIDCtxKey(t *testing.T) {
	if AccountIDCtxKey.String() != "accountID" {
		t.Errorf("expected 'accountID', got '%s'", AccountIDCtxKey.String())
	}
}

func TestWithIdentity(t *testing.T) {
	ctx := WithIdentity(context.Background(), "acc-1", "phone")

	accountID, ok := GetAccountIDFromContext(ctx)
	if !ok || accountID != "acc-1" {
		t.Fatalf("expected acc-1, got %q (ok=%v)", accountID, ok)
	}

	deviceID, ok := GetDeviceIDFromContext(ctx)
	if !ok || deviceID != "phone" {
		t.Fatalf("expected phone, got %q (ok=%v)", deviceID, ok)
	}
}

func TestGetAccountIDFromContext_Missing(t *testing.T) {
	accountID, ok := GetAccountIDFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if accountID != "" {
		t.Errorf("expected empty account, got %q", accountID)
	}
}

func TestGetAccountIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), AccountIDCtxKey, int64(42))

	if _, ok := GetAccountIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for wrong type, got true")
	}
}

func TestGetAccountIDFromContext_Empty(t *testing.T) {
	ctx := context.WithValue(context.Background(), AccountIDCtxKey, "")

	if _, ok := GetAccountIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for empty account, got true")
	}
}

func TestGetDeviceIDFromContext_DifferentKey(t *testing.T) {
	otherKey := contextKey("otherKey")
	ctx := context.WithValue(context.Background(), otherKey, "phone")

	if _, ok := GetDeviceIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for different key, got true")
	}
}
