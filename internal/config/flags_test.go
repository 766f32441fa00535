// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── parseFlags ────────────────────────────────────────────────────────────────

func TestParseFlags_AllFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-a", "127.0.0.1:8080",
		"-r", "http://localhost:8080",
		"-d", "file.db",
		"-driver", "sqlite",
		"-kv", "leveldb",
		"-kv-path", "/tmp/kv",
		"-config", "cfg.yaml",
		"-token-sign-key", "key",
		"-token-issuer", "iss",
		"-token-duration", "1h",
		"-token", "bearer",
		"-device", "laptop",
		"-primary",
		"-passphrase", "pass",
		"-request-timeout", "5s",
		"-debounce", "50ms",
		"-otlp", "collector:4317",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, "http://localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "file.db", cfg.Storage.DB.DSN)
	assert.Equal(t, DriverSQLite, cfg.Storage.DB.Driver)
	assert.Equal(t, KVBackendLevelDB, cfg.Storage.KV.Backend)
	assert.Equal(t, "/tmp/kv", cfg.Storage.KV.Path)
	assert.Equal(t, "cfg.yaml", cfg.ConfigFilePath)
	assert.Equal(t, "key", cfg.App.TokenSignKey)
	assert.Equal(t, "iss", cfg.App.TokenIssuer)
	assert.Equal(t, time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "bearer", cfg.App.AuthToken)
	assert.Equal(t, "laptop", cfg.App.DeviceID)
	assert.True(t, cfg.App.PrimaryDevice)
	assert.Equal(t, "pass", cfg.App.StoragePassphrase)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Sync.DebounceInterval)
	assert.Equal(t, "collector:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestParseFlags_Empty(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestParseFlags_ShortConfigAlias(t *testing.T) {
	cfg, err := parseFlags([]string{"-c", "conf.json"})
	require.NoError(t, err)
	assert.Equal(t, "conf.json", cfg.ConfigFilePath)
}

func TestParseFlags_BadAddress(t *testing.T) {
	_, err := parseFlags([]string{"-a", "not-an-address"})
	assert.Error(t, err)
}

// ── NetAddress ────────────────────────────────────────────────────────────────

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "localhost", input: "localhost:8080", want: "localhost:8080"},
		{name: "ip", input: "10.0.0.1:443", want: "10.0.0.1:443"},
		{name: "empty host", input: ":9000", want: ":9000"},
		{name: "no port", input: "localhost", wantErr: true},
		{name: "port not a number", input: "localhost:http", wantErr: true},
		{name: "zero port", input: "localhost:0", wantErr: true},
		{name: "bad ip", input: "example:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

func TestNetAddress_String_Empty(t *testing.T) {
	var addr NetAddress
	assert.Empty(t, addr.String())
}
