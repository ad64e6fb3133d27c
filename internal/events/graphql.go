package events

import "time"

// ExecutionStart is emitted once the operation is selected and variables are
// coerced, right before the root selection set is resolved.
type ExecutionStart struct {
	OperationName string
	OperationType string
}

// ExecutionFinish is emitted after an execution completes or is aborted by a
// contract violation (Fatal set).
type ExecutionFinish struct {
	OperationName string
	OperationType string
	Outcome       string
	Errors        []error
	Fatal         error
	Duration      time.Duration
}

// FieldError is emitted for every field or fragment error recorded during
// execution.
type FieldError struct {
	Path    string
	Message string
	Err     error
}
