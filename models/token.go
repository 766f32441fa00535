// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT token used to authenticate a device against the remote
// record store.
//
// The "sub" claim carries the account identifier; DeviceID is a private
// claim naming the device inside that account.
type Token struct {
	// Token is the underlying JWT token used for signing and claim inspection.
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// DeviceID names the device the token was issued to.
	DeviceID string `json:"device_id,omitempty"`

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// AccountID is a cached copy of the "sub" claim.
	AccountID string `json:"-"`
}

// GetAccountID extracts the account identifier from the "sub" claim.
func (t *Token) GetAccountID() (string, error) {
	accountID, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting AccountID from token: %w", err)
	}
	if accountID == "" {
		return "", errors.New("empty subject")
	}
	return accountID, nil
}

// String returns the compact JWS serialization of the token.
func (t *Token) String() string {
	return t.SignedString
}
