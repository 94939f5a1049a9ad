// Package git executes git plumbing operations against a single working
// tree path. It has no knowledge of tickets or associations.
//
// The [Client] interface is the seam between the engine and process
// execution: [CLI] shells out to the installed git binary with a bounded
// timeout per call, while [Fake] provides an in-memory implementation for
// tests. Higher layers depend only on Client and never on subprocess
// semantics.
//
// Query operations fail closed: a git error means "false" or "empty", never
// a panic. Mutating operations ([Client.CheckoutOrCreate]) return typed
// errors from errors.go so callers can tell a dirty working tree from a
// missing binary.
package git
