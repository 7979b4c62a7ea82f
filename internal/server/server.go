// Package server defines the lifecycle contract fx uses to run the relink
// listener.
package server

import "context"

// Server is started once by the fx OnStart hook and shut down by OnStop.
// Start must return as soon as the listener is bound; serving continues in
// the background until Stop drains in-flight requests.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Addr is the configured listen address, e.g. ":8080".
	Addr() string
}
