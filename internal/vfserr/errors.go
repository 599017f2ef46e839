// Package vfserr defines the error taxonomy shared by every VFS component.
package vfserr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure the way callers (including the CLI
// collaborator) need to react to it, independent of the operation
// that produced it.
type Kind int

const (
	// PathError: named path does not exist, or an intermediate
	// component is not a directory.
	PathError Kind = iota
	// InvalidArg: malformed name, type mismatch, nil inputs, mis-sized
	// arguments.
	InvalidArg
	// RootError: operation attempted on root where forbidden.
	RootError
	// Conflict: move/copy into the source's own subtree.
	Conflict
	// IOError: host-side failure when exporting.
	IOError
	// OutOfRange: byte-buffer offset past end.
	OutOfRange
	// Unsupported: unknown compression version or algorithm.
	Unsupported
	// Corrupted: compressed payload malformed or length-mismatched.
	Corrupted
	// AlreadyExists: reserved for call sites where auto-suffixing is
	// disabled.
	AlreadyExists
)

func (k Kind) String() string {
	switch k {
	case PathError:
		return "PathError"
	case InvalidArg:
		return "InvalidArg"
	case RootError:
		return "RootError"
	case Conflict:
		return "Conflict"
	case IOError:
		return "IOError"
	case OutOfRange:
		return "OutOfRange"
	case Unsupported:
		return "Unsupported"
	case Corrupted:
		return "Corrupted"
	case AlreadyExists:
		return "AlreadyExists"
	default:
		return "Unknown"
	}
}

// Sentinels usable with errors.Is for callers that only care about the
// kind and not the operation/path context.
var (
	ErrPath          = errors.New("path error")
	ErrInvalidArg    = errors.New("invalid argument")
	ErrRoot          = errors.New("root error")
	ErrConflict      = errors.New("conflict")
	ErrIO            = errors.New("io error")
	ErrOutOfRange    = errors.New("out of range")
	ErrUnsupported   = errors.New("unsupported")
	ErrCorrupted     = errors.New("corrupted")
	ErrAlreadyExists = errors.New("already exists")
)

func sentinelFor(k Kind) error {
	switch k {
	case PathError:
		return ErrPath
	case InvalidArg:
		return ErrInvalidArg
	case RootError:
		return ErrRoot
	case Conflict:
		return ErrConflict
	case IOError:
		return ErrIO
	case OutOfRange:
		return ErrOutOfRange
	case Unsupported:
		return ErrUnsupported
	case Corrupted:
		return ErrCorrupted
	case AlreadyExists:
		return ErrAlreadyExists
	default:
		return nil
	}
}

// Error wraps a failure with the operation and path that produced it.
type Error struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	msg := e.Err
	if msg == nil {
		msg = sentinelFor(e.Kind)
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return sentinelFor(e.Kind)
}

// New builds an *Error for op/path with the given kind, wrapping its
// sentinel error.
func New(op, path string, kind Kind) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: sentinelFor(kind)}
}

// Wrap builds an *Error for op/path with the given kind, wrapping a
// specific underlying error instead of the bare sentinel.
func Wrap(op, path string, kind Kind, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return errors.Is(err, sentinelFor(kind))
}
