// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	KVBackendSQLite  = "sqlite"
	KVBackendLevelDB = "leveldb"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "go-storage-sync",
			TokenDuration: 30 * 24 * time.Hour,
			Version:       "dev",
		},
		Storage: Storage{
			DB: DB{Driver: DriverSQLite},
			KV: KV{Backend: KVBackendSQLite},
		},
		Server: Server{
			RequestTimeout: 30 * time.Second,
		},
		Adapter: Adapter{
			RequestTimeout: 30 * time.Second,
			RateLimit:      10,
			RateBurst:      20,
		},
		Sync: Sync{
			DebounceInterval:        200 * time.Millisecond,
			MaxConsecutiveConflicts: 3,
			BatchSize:               1024,
			ConstrainedBatchSize:    256,
			RetryAttempts:           4,
			RetryBaseDelay:          500 * time.Millisecond,
		},
		Workers: Workers{
			RestoreInterval:           5 * time.Minute,
			SyncMessagesInterval:      30 * time.Second,
			CallLinkCleanupInterval:   time.Hour,
			CallLinkDeletionThreshold: 30 * 24 * time.Hour,
		},
	}
}
