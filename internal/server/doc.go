// Package server wires and runs the remote record store's HTTP server.
//
// It owns the server lifecycle: startup, signal handling and graceful
// shutdown.
package server
