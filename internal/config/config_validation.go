// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks invariants shared by every binary.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.DB.Driver {
	case "", DriverPostgres, DriverSQLite:
	default:
		return ErrInvalidStorageConfigs
	}
	switch cfg.Storage.KV.Backend {
	case "", KVBackendSQLite, KVBackendLevelDB:
	default:
		return ErrInvalidStorageConfigs
	}
	return nil
}

func (cfg *StructuredConfig) validateServer() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" {
		return ErrInvalidAppConfigs
	}
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.KV.Backend == KVBackendLevelDB && cfg.Storage.KV.Path == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}
	if cfg.App.DeviceID == "" || cfg.App.AuthToken == "" {
		return ErrInvalidAppConfigs
	}
	if cfg.App.PrimaryDevice && cfg.App.StoragePassphrase == "" {
		return ErrInvalidAppConfigs
	}
	if cfg.Sync.RetryAttempts < 1 || cfg.Sync.MaxConsecutiveConflicts < 1 || cfg.Sync.MergeBatchSize() < 1 {
		return ErrInvalidSyncConfigs
	}
	if cfg.Workers.RestoreInterval == 0 || cfg.Workers.SyncMessagesInterval == 0 || cfg.Workers.CallLinkCleanupInterval == 0 {
		return ErrInvalidWorkerConfigs
	}
	return nil
}
