// Package errors provides the error taxonomy used by bootsig.
// It extends Go's standard error handling with structured error codes and
// cause preservation so callers can branch on the kind of failure.
package errors

// ErrorCode represents a specific failure condition.
// Error codes are string-based for debuggability.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates the target image does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Permission errors.

	// CodeForbidden indicates the caller lacks permission to open the image.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid, e.g. a directory
	// where an image file was expected.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Execution errors.

	// CodeExecutionFailed indicates an I/O operation on an open image failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeCanceled indicates the operation was abandoned because its context ended.
	CodeCanceled ErrorCode = "CANCELED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
