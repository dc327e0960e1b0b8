// Package fs resolves virtual paths against the published tag tree and
// adapts the result to the FUSE protocol.
//
// This file contains error types and error handling utilities.
package fs

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"tagfs/internal/logging"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")

	// ErrNotFound indicates a virtual path segment doesn't exist, or
	// descent was attempted past an alias.
	ErrNotFound = errors.New("virtual path not found")

	// ErrNotDirectory indicates an alias was reached where directory
	// semantics were required.
	ErrNotDirectory = errors.New("not a directory")

	// ErrInvalidArgument indicates a symlink operation on a branch.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotSupported indicates file I/O on an internal handle.
	ErrNotSupported = errors.New("operation not supported")
)

// Error wraps resolution and protocol errors with the operation and
// affected virtual path.
type Error struct {
	Op   string // Operation that failed (e.g., "lookup", "readdir")
	Path string // Affected virtual path
	Err  error  // Underlying error
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given operation, path, and
// underlying error.
func NewError(op string, path string, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// ToFuseError translates an internal error into the errno FUSE expects.
// Real-filesystem errors from passthrough I/O keep their original errno
// rather than being remapped.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, ErrNotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, ErrInvalidArgument):
		return syscall.EINVAL
	case errors.Is(err, ErrNotSupported):
		return syscall.ENOTSUP
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		errLogger.Trace("Passing through errno: %v", errno)
		return errno
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}

// Common operation names for consistent logging and error reporting
const (
	OpLookup   = "lookup"   // Resolving a virtual path
	OpGetattr  = "getattr"  // Getting node attributes
	OpReadlink = "readlink" // Reading a symlink target
	OpReadDir  = "readdir"  // Reading directory contents
	OpOpen     = "open"     // Opening a node
	OpRead     = "read"     // Reading from a handle
	OpWrite    = "write"    // Writing to a handle
	OpFlush    = "flush"    // Flushing a handle
	OpRelease  = "release"  // Releasing a handle
)
