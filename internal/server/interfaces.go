// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

// Server is the lifecycle contract of the record store server.
type Server interface {
	// RunServer starts serving requests and blocks until a stop signal
	// arrives and shutdown completes.
	RunServer()

	// Shutdown gracefully stops serving and frees associated resources.
	Shutdown()
}
