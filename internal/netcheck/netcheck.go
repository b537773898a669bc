// Package netcheck reports whether the process currently has network
// connectivity. Callers consult the gate before spending retry budget on an
// external call, failing fast with ErrOffline instead of burning attempts
// against a dead link.
//
// The gate is a capability passed to the components that need it, never a
// package-level singleton, so tests substitute a Static double.
package netcheck

import "errors"

// ErrOffline is returned by callers that short-circuit an external call
// because the connectivity gate reports no connection.
var ErrOffline = errors.New("network is offline")

// Checker reports current connectivity. IsConnected is synchronous and
// performs no I/O of its own; implementations cache state gathered in the
// background.
type Checker interface {
	IsConnected() bool
}

// Static is a fixed-answer Checker for tests and for deployments that want
// the gate disabled.
type Static bool

// IsConnected implements Checker.
func (s Static) IsConnected() bool {
	return bool(s)
}

// AlwaysOnline is a gate that never blocks a call.
const AlwaysOnline = Static(true)
