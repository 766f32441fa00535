// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and identifier generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// AccountIDCtxKey is the key used to store the authenticated account in the
// context. All devices of an account share one record store.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.AccountIDCtxKey, "acc-1")
var AccountIDCtxKey = contextKey("accountID")

// DeviceIDCtxKey is the key used to store the calling device in the context.
var DeviceIDCtxKey = contextKey("deviceID")

// WithIdentity returns a copy of ctx carrying accountID and deviceID.
func WithIdentity(ctx context.Context, accountID, deviceID string) context.Context {
	ctx = context.WithValue(ctx, AccountIDCtxKey, accountID)
	return context.WithValue(ctx, DeviceIDCtxKey, deviceID)
}

// GetAccountIDFromContext retrieves the account identifier from the context.
//
// Returns the account ID and an ok flag:
//   - ok == true : value is found, is a string and is not empty
//   - ok == false: value is missing or has an unexpected type
func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	accountID, ok := ctx.Value(AccountIDCtxKey).(string)
	return accountID, ok && accountID != ""
}

// GetDeviceIDFromContext retrieves the device identifier from the context.
func GetDeviceIDFromContext(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDCtxKey).(string)
	return deviceID, ok && deviceID != ""
}
