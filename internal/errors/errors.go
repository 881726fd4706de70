package errors

import (
	"errors"
	"fmt"
)

// Base error types
var (
	// ErrNotManaged marks a service whose configuration cannot be resolved
	// at all: the namespace is not managed by this orchestrator and must be
	// skipped, not alerted on.
	ErrNotManaged = errors.New("not a managed service")

	ErrInvalidInput = errors.New("invalid input")
	ErrSnapshot     = errors.New("snapshot unavailable")
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfigResolution ErrorType = "config_resolution"
	ErrorTypeDiscovery        ErrorType = "discovery"
	ErrorTypeTransport        ErrorType = "transport"
	ErrorTypeValidation       ErrorType = "validation"
)

// CheckError is a structured error for replication check operations. It
// keeps the failing operation and the service/namespace it belongs to, so
// one item's failure stays attributable to that item.
type CheckError struct {
	Type      ErrorType
	Op        string // operation that failed (e.g. "load_declarations", "emit_event")
	Service   string // owning service, if known
	Namespace string // namespace, if applicable
	Err       error  // underlying error
}

func (e *CheckError) Error() string {
	switch {
	case e.Service != "" && e.Namespace != "":
		return fmt.Sprintf("%s failed for %s/%s: %v", e.Op, e.Service, e.Namespace, e.Err)
	case e.Service != "":
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Service, e.Err)
	default:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is matching against the base error types.
func (e *CheckError) Is(target error) bool {
	if target == nil {
		return false
	}
	switch target {
	case ErrNotManaged:
		return e.Type == ErrorTypeConfigResolution && errors.Is(e.Err, ErrNotManaged)
	case ErrInvalidInput:
		return e.Type == ErrorTypeValidation
	}
	return errors.Is(e.Err, target)
}

// NewCheckError creates a new CheckError.
func NewCheckError(errorType ErrorType, op, service string, err error) *CheckError {
	return &CheckError{
		Type:    errorType,
		Op:      op,
		Service: service,
		Err:     err,
	}
}

// WithNamespace adds namespace information to the error.
func (e *CheckError) WithNamespace(namespace string) *CheckError {
	e.Namespace = namespace
	return e
}

// Helper functions

// WrapConfigError wraps a per-item configuration resolution failure.
func WrapConfigError(op, service string, err error) *CheckError {
	return NewCheckError(ErrorTypeConfigResolution, op, service, err)
}

// WrapDiscoveryError wraps an availability query failure.
func WrapDiscoveryError(op string, err error) *CheckError {
	return NewCheckError(ErrorTypeDiscovery, op, "", err)
}

// WrapTransportError wraps an alert emission failure.
func WrapTransportError(op, service string, err error) *CheckError {
	return NewCheckError(ErrorTypeTransport, op, service, err)
}

// IsNotManaged checks whether an error means the owning service has no
// resolvable configuration under this orchestrator.
func IsNotManaged(err error) bool {
	return errors.Is(err, ErrNotManaged)
}
