// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
)

func newTestAuthSvc(t *testing.T, duration time.Duration) AuthService {
	t.Helper()
	return NewAuthService(config.App{
		TokenSignKey:  "sign-key",
		TokenIssuer:   "storage-sync",
		TokenDuration: duration,
	}, logger.Nop())
}

func TestAuthService_CreateAndParseToken(t *testing.T) {
	svc := newTestAuthSvc(t, time.Hour)
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, "acc-1", "phone")
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := svc.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", parsed.AccountID)
	assert.Equal(t, "phone", parsed.DeviceID)
}

func TestAuthService_CreateToken_MissingIdentity(t *testing.T) {
	svc := newTestAuthSvc(t, time.Hour)

	_, err := svc.CreateToken(context.Background(), "", "phone")
	assert.ErrorIs(t, err, ErrNoAccountProvided)

	_, err = svc.CreateToken(context.Background(), "acc-1", "")
	assert.ErrorIs(t, err, ErrNoDeviceProvided)
}

func TestAuthService_CreateToken_BadConfig(t *testing.T) {
	// нулевая длительность: генерация невозможна
	svc := newTestAuthSvc(t, 0)

	_, err := svc.CreateToken(context.Background(), "acc-1", "phone")
	assert.ErrorIs(t, err, ErrTokenCreationFailed)
}

func TestAuthService_ParseToken_Invalid(t *testing.T) {
	svc := newTestAuthSvc(t, time.Hour)

	_, err := svc.ParseToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)

	other := NewAuthService(config.App{TokenSignKey: "other", TokenIssuer: "storage-sync", TokenDuration: time.Hour}, logger.Nop())
	token, err := other.CreateToken(context.Background(), "acc-1", "phone")
	require.NoError(t, err)

	_, err = svc.ParseToken(context.Background(), token.SignedString)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}
