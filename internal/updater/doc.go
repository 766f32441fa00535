// Package updater maps local entities to storage records and back.
//
// There is one updater per record kind. Each one implements
// service.RecordUpdater over the client repositories of package store:
//
//   - AccountUpdater: the single account settings record
//   - ContactUpdater: recipients other than the local user
//   - GroupV1Updater: legacy groups, read but never merged
//   - GroupV2Updater: groups keyed by master key
//   - DistributionListUpdater: story audience lists, with tombstones
//   - CallLinkUpdater: call links, with tombstones
//
// MergeRecord implementations are idempotent: merging the same record twice
// leaves local state unchanged and returns the same NeedsUpdate verdict.
package updater
