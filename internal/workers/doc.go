// Package workers runs the periodic background jobs of a syncing device:
// polling for a newer manifest, polling cross-device sync messages and
// purging expired call links.
package workers
