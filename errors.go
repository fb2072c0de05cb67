package wirekit

import (
	"errors"
	"fmt"
)

// Common errors for the client runtime
var (
	// ErrNoRemote indicates the context has no engine to connect to
	ErrNoRemote = errors.New("no remote configured")

	// ErrDisconnected indicates the core connection is gone
	ErrDisconnected = errors.New("core is disconnected")

	// ErrUnknownType indicates no client kind is registered for an
	// advertised object type
	ErrUnknownType = errors.New("unknown object type")

	// ErrWrongProxyType indicates a typed bind found an object of another
	// kind
	ErrWrongProxyType = errors.New("wrong proxy type")

	// ErrProxyDestroyed indicates an operation on an already destroyed proxy
	ErrProxyDestroyed = errors.New("proxy is destroyed")

	// ErrLoopRunning indicates a second Run on an already running loop
	ErrLoopRunning = errors.New("loop is already running")
)

// ProxyError represents a failure on one remote object with its context
type ProxyError struct {
	Op  string // operation that caused the error
	ID  uint32 // object id if relevant
	Err error  // underlying error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("wirekit %s id %d: %v", e.Op, e.ID, e.Err)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// newProxyError creates a new ProxyError
func newProxyError(op string, id uint32, err error) *ProxyError {
	return &ProxyError{
		Op:  op,
		ID:  id,
		Err: err,
	}
}
