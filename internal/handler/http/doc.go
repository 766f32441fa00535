// Package http implements the HTTP transport of the remote record store.
//
// It exposes the manifest and item endpoints used by syncing devices and the
// sync-message relay between devices of one account. Device authentication,
// request tracing, access logging and snappy compression are handled in this
// package before requests are delegated to the service layer.
package http
