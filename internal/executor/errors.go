package executor

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by the default capability implementations when
// a Resolvable lacks the capability the walker needs. The walker converts it
// into a ContractViolation.
var ErrUnsupported = errors.New("capability not supported")

// ErrContractViolation matches every *ContractViolation via errors.Is.
var ErrContractViolation = errors.New("contract violation")

// ContractViolation reports a mismatch between the registry and the
// resolvers, or a malformed document that validation should have rejected.
// It aborts the whole execution.
type ContractViolation struct {
	Message string
	Cause   error
}

func (e *ContractViolation) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("contract violation: %s: %v", e.Message, e.Cause)
	}
	return "contract violation: " + e.Message
}

func (e *ContractViolation) Is(target error) bool { return target == ErrContractViolation }

func (e *ContractViolation) Unwrap() error { return e.Cause }

// violate aborts the current execution. Only Execute recovers it.
func violate(cause error, format string, args ...any) {
	panic(&ContractViolation{Message: fmt.Sprintf(format, args...), Cause: cause})
}

// UnknownField is what a FieldResolver returns for a field name it does not
// implement.
func UnknownField(typeName, fieldName string) error {
	return fmt.Errorf("field %q not found on type %q: %w", fieldName, typeName, ErrUnsupported)
}

// panicked carries a panic raised on a worker goroutine back to the caller.
type panicked struct{ value any }

func (p *panicked) Error() string { return fmt.Sprintf("panic: %v", p.value) }
