// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds the client identity and key material.
type ClientApp struct {
	// AuthToken is the bearer token presented to the remote store.
	AuthToken string
	// DeviceID names this device inside the account.
	DeviceID string
	// PrimaryDevice marks the device allowed to author new manifests.
	PrimaryDevice bool
	// StoragePassphrase and StorageSalt derive the storage key.
	StoragePassphrase string
	StorageSalt       string
	// Version is the running application version.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote store endpoint address.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// RateLimit and RateBurst configure the outbound rate limiter.
	RateLimit float64
	RateBurst int
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path used by the client.
	DSN string
}

// ClientKV contains local key-value store settings.
type ClientKV struct {
	Backend string
	Path    string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
	KV ClientKV
}

// ClientSync holds the sync engine settings.
type ClientSync struct {
	DebounceInterval        time.Duration
	MaxConsecutiveConflicts int
	BatchSize               int
	ConstrainedBatchSize    int
	MemoryConstrained       bool
	RetryAttempts           int
	RetryBaseDelay          time.Duration
}

// MergeBatchSize returns the item batch size for the current execution context.
func (c ClientSync) MergeBatchSize() int {
	if c.MemoryConstrained {
		return c.ConstrainedBatchSize
	}
	return c.BatchSize
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	RestoreInterval           time.Duration
	SyncMessagesInterval      time.Duration
	CallLinkCleanupInterval   time.Duration
	CallLinkDeletionThreshold time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App       ClientApp
	Adapter   ClientAdapter
	Storage   ClientStorage
	Sync      ClientSync
	Workers   ClientWorkers
	Telemetry Telemetry
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the fields of cfg relevant to the client runtime.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			AuthToken:         cfg.App.AuthToken,
			DeviceID:          cfg.App.DeviceID,
			PrimaryDevice:     cfg.App.PrimaryDevice,
			StoragePassphrase: cfg.App.StoragePassphrase,
			StorageSalt:       cfg.App.StorageSalt,
			Version:           cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			RateLimit:      cfg.Adapter.RateLimit,
			RateBurst:      cfg.Adapter.RateBurst,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
			KV: ClientKV{Backend: cfg.Storage.KV.Backend, Path: cfg.Storage.KV.Path},
		},
		Sync: ClientSync{
			DebounceInterval:        cfg.Sync.DebounceInterval,
			MaxConsecutiveConflicts: cfg.Sync.MaxConsecutiveConflicts,
			BatchSize:               cfg.Sync.BatchSize,
			ConstrainedBatchSize:    cfg.Sync.ConstrainedBatchSize,
			MemoryConstrained:       cfg.Sync.MemoryConstrained,
			RetryAttempts:           cfg.Sync.RetryAttempts,
			RetryBaseDelay:          cfg.Sync.RetryBaseDelay,
		},
		Workers: ClientWorkers{
			RestoreInterval:           cfg.Workers.RestoreInterval,
			SyncMessagesInterval:      cfg.Workers.SyncMessagesInterval,
			CallLinkCleanupInterval:   cfg.Workers.CallLinkCleanupInterval,
			CallLinkDeletionThreshold: cfg.Workers.CallLinkDeletionThreshold,
		},
		Telemetry: cfg.Telemetry,
	}
}

// GetServerConfig builds the structured configuration and validates the
// fields the remote store server depends on.
func GetServerConfig() (*StructuredConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}
	return cfg, cfg.validateServer()
}
