package plugin

import (
	"errors"
	"fmt"
)

// Common errors for module loading and handle lifecycle
var (
	// ErrModuleNotFound indicates no loader could provide the module
	ErrModuleNotFound = errors.New("module not found")

	// ErrFactoryNotFound indicates the module has no factory with the requested name
	ErrFactoryNotFound = errors.New("factory not found")

	// ErrNotSupported indicates the object does not provide the requested interface
	ErrNotSupported = errors.New("interface not supported")

	// ErrWrongInterface indicates the object returned an interface whose header
	// names a different type than requested
	ErrWrongInterface = errors.New("interface type mismatch")

	// ErrVersionTooOld indicates the interface header's version is older than
	// the caller requires
	ErrVersionTooOld = errors.New("interface version too old")

	// ErrClosed indicates the handle or view was already closed
	ErrClosed = errors.New("handle closed")
)

// ModuleError represents a module operation failure with context
type ModuleError struct {
	Op   string // operation that caused the error
	Path string // module path if relevant
	Err  error  // underlying error
}

func (e *ModuleError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("plugin %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("plugin %s: %v", e.Op, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// newModuleError creates a new ModuleError
func newModuleError(op, path string, err error) *ModuleError {
	return &ModuleError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
