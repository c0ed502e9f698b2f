package engine

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of an error.
type ErrorClass string

const (
	// ErrorClassConfiguration indicates a programmer or configuration error, such as
	// a property mapping that resolves to nothing on the parent.
	// It aborts processing of the type and is never swallowed.
	ErrorClassConfiguration ErrorClass = "configuration"

	// ErrorClassUnsupported indicates the remote does not implement the action for
	// the type. The enumerator converts it into an empty result.
	ErrorClassUnsupported ErrorClass = "unsupported"

	// ErrorClassRemote indicates a transport or remote service failure.
	// Retries belong to the transport layer; the engine propagates it.
	ErrorClassRemote ErrorClass = "remote"

	// ErrorClassSink indicates the results sink rejected a report.
	ErrorClassSink ErrorClass = "sink"
)

// ErrUnsupportedAction is returned by a ResourceService when the listing or detail
// action is declared but not implemented for a type in this account, region or partition.
var ErrUnsupportedAction = &EngineError{
	Class:   ErrorClassUnsupported,
	Message: "action not supported for resource type",
	Code:    ErrCodeUnsupportedAction,
}

// EngineError represents a classified error with context.
// nolint:revive // EngineError is intentionally named to distinguish from standard errors
type EngineError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Resource is the resource type that caused the error, if applicable.
	Resource string `json:"resource,omitempty"`

	// Operation is the operation being performed when the error occurred.
	Operation string `json:"operation,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`

	// Details contains additional context-specific information.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	switch {
	case e.Resource != "" && e.Operation != "":
		msg = fmt.Sprintf("%s (resource=%s, operation=%s)", msg, e.Resource, e.Operation)
	case e.Resource != "":
		msg = fmt.Sprintf("%s (resource=%s)", msg, e.Resource)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedError creates an unsupported-action error wrapping the remote cause.
// It matches ErrUnsupportedAction under errors.Is.
func NewUnsupportedError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassUnsupported,
		Message: message,
		Code:    ErrCodeUnsupportedAction,
		Err:     err,
	}
}

// NewRemoteError creates a new remote error.
func NewRemoteError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassRemote,
		Message: message,
		Err:     err,
	}
}

// NewSinkError creates a new sink error.
func NewSinkError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassSink,
		Message: message,
		Err:     err,
	}
}

// WithResource adds resource context to an error.
func (e *EngineError) WithResource(resource string) *EngineError {
	e.Resource = resource
	return e
}

// WithOperation adds operation context to an error.
func (e *EngineError) WithOperation(operation string) *EngineError {
	e.Operation = operation
	return e
}

// WithCode adds an error code to an error.
func (e *EngineError) WithCode(code string) *EngineError {
	e.Code = code
	return e
}

// WithDetail adds a detail field to the error context.
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ClassOf returns the class of err, or the empty class if err is not an EngineError.
func ClassOf(err error) ErrorClass {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

// CodeOf returns the code of err, or the empty string.
func CodeOf(err error) string {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConfiguration returns true if the error is classified as a configuration error.
func IsConfiguration(err error) bool {
	return ClassOf(err) == ErrorClassConfiguration
}

// IsUnsupported returns true if the error is a soft capability gap.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedAction)
}

// IsRemote returns true if the error is classified as a remote error.
func IsRemote(err error) bool {
	return ClassOf(err) == ErrorClassRemote
}

// Common error codes.
const (
	ErrCodeMappingUnresolved = "MAPPING_UNRESOLVED"
	ErrCodeInvalidMapping    = "INVALID_MAPPING"
	ErrCodeParentMissing     = "PARENT_MISSING"
	ErrCodeUnknownDependency = "UNKNOWN_DEPENDENCY"
	ErrCodeUnknownCapability = "UNKNOWN_CAPABILITY"
	ErrCodeCapabilityFailed  = "CAPABILITY_FAILED"
	ErrCodeUnsupportedAction = "UNSUPPORTED_ACTION"
	ErrCodeInvalidProperties = "INVALID_PROPERTIES"
	ErrCodeListFailed        = "LIST_FAILED"
	ErrCodeGetFailed         = "GET_FAILED"
	ErrCodeThrottled         = "THROTTLED"
	ErrCodeReportFailed      = "REPORT_FAILED"
)
