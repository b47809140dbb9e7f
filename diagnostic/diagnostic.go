// Package diagnostic defines the recoverable and fatal error kinds the
// indexer reports, per spec.md §7.
package diagnostic

import (
	goerrors "github.com/go-errors/errors"
)

// Kind enumerates the error kinds spec.md §7 describes.
type Kind string

const (
	ParseError             Kind = "parse_error"
	QueryError              Kind = "query_error"
	RegistryConflict        Kind = "registry_conflict"
	ResolutionCycle         Kind = "resolution_cycle"
	TypeFixpointNotReached  Kind = "type_fixpoint_not_reached"
	UnknownSymbol           Kind = "unknown_symbol"
	Cancelled               Kind = "cancelled"
)

// Diagnostic is a single, data-only report attached to one file's update.
// It is never thrown; update_file collects these and returns them.
type Diagnostic struct {
	Kind    Kind
	File    string
	Message string
}

func New(kind Kind, file, message string) Diagnostic {
	return Diagnostic{Kind: kind, File: file, Message: message}
}

// Fatal wraps a programmer-error invariant violation (RegistryConflict is
// the only kind that is ever fatal) in a stack-traced error so the
// coordinator can surface exactly where the invariant broke.
func Fatal(file, message string) error {
	return goerrors.Errorf("%s: %s", file, message)
}
