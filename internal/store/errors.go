// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrManifestNotFound is returned when the account has never written a
	// manifest.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrManifestNotNewer is returned by conditional reads when the stored
	// manifest is not newer than the version the caller already has.
	ErrManifestNotNewer = errors.New("manifest is not newer")

	// ErrVersionConflict is returned when a write carries a manifest version
	// other than the stored version plus one.
	ErrVersionConflict = errors.New("manifest version conflict occurred")

	// ErrKeyNotFound is returned by [KeyValueStore.Get] for absent keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrEntityNotFound is returned when a local entity does not exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrTransient wraps database errors that may succeed when retried.
	ErrTransient = errors.New("transient database error")

	// ErrUnsupportedDriver is returned for an unknown database driver name.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrUnsupportedKVBackend is returned for an unknown key-value backend.
	ErrUnsupportedKVBackend = errors.New("unsupported key-value backend")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrDecodingEntity is returned when a stored entity body is not valid JSON.
	ErrDecodingEntity = errors.New("failed to decode entity")
)
