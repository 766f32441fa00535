// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// storage sync server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of a request.
package app

const (
	// MsgNoAccountID is returned when the request context carries no
	// authenticated account.
	MsgNoAccountID = "no account ID was given"

	// MsgInvalidJSON is returned when the request body cannot be decoded.
	MsgInvalidJSON = "invalid JSON was passed"

	// MsgInvalidManifestVersion is returned when the version path parameter
	// is not an unsigned integer.
	MsgInvalidManifestVersion = "invalid manifest version"

	// MsgInvalidSyncCursor is returned when the "after" query parameter is
	// not a non-negative integer.
	MsgInvalidSyncCursor = "invalid sync message cursor"

	// MsgBodyUnreadable is returned when the request body cannot be read.
	MsgBodyUnreadable = "error reading request body"

	// MsgInvalidSnappyData is returned when a body sent with
	// Content-Encoding: snappy does not decode.
	MsgInvalidSnappyData = "invalid snappy data"
)
