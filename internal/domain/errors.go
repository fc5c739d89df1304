// Package domain implements the core transforms of the mutation report
// engine: conflict resolution, offset arithmetic, diffing, call-trace
// enumeration and patch generation.
package domain

import "errors"

// ErrNotFound marks lookup failures for data the caller asked for by name or
// id. Surfaced as an in-page message in server mode, never a crash.
var ErrNotFound = errors.New("not found")
