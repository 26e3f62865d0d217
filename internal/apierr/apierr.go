// Package apierr defines the error taxonomy shared by the catalog, fsops,
// ingest and virtualfs packages so that callers at the HTTP or FUSE boundary
// can dispatch on a small, fixed set of sentinel values with errors.Is.
package apierr

import "errors"

// Sentinel errors. Wrap with fmt.Errorf("...: %w", Err*) at the call site so
// errors.Is keeps working while the message still carries context.
var (
	// ErrBadInput signals malformed or missing caller input. Maps to HTTP 400.
	ErrBadInput = errors.New("bad input")

	// ErrNotFound signals a catalog row or backing file that does not exist.
	// Maps to HTTP 404 / FUSE ENOENT.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a unique-constraint violation (duplicate album
	// name, duplicate photo hash). Maps to HTTP 409.
	ErrConflict = errors.New("conflict")

	// ErrCorruption signals an invariant violation that should be
	// impossible absent a corrupted catalog: an unexpected affected-row
	// count, or a cycle in the album graph. Maps to HTTP 500 + log; no
	// automatic repair is attempted.
	ErrCorruption = errors.New("corruption")

	// ErrIO signals a subprocess failure, a rename/remove failure, or a
	// catalog row whose backing file is missing on disk. Maps to HTTP
	// 500 / FUSE EIO.
	ErrIO = errors.New("io failure")

	// ErrInternal signals a pool checkout failure or other internal fault
	// with no more specific classification. Maps to HTTP 500.
	ErrInternal = errors.New("internal error")
)

// Is reports whether err (or anything it wraps) is classified as target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
