// Package referrors provides structured error types for jsonref.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish a pointer that does not match
// its document from a document that could not be fetched at all.
//
// # Error Categories
//
//   - ResolutionError: a JSON pointer names a key or index absent from the document
//   - FetchError: a remote document could not be retrieved or decoded
//   - ReferenceError: a malformed $ref, a circular reference, or path traversal
//   - ParseError: the input document could not be decoded
//   - ResourceLimitError: a depth or size limit was exceeded
//   - ConfigError: invalid options
//
// # Usage with errors.As
//
//	v, err := ref.Resolve()
//	if err != nil {
//	    var resErr *referrors.ResolutionError
//	    if errors.As(err, &resErr) {
//	        log.Printf("segment %q of %s missing", resErr.Segment, resErr.Pointer)
//	    }
//	}
package referrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrResolution indicates a JSON pointer could not be resolved.
	ErrResolution = errors.New("resolution error")

	// ErrFetch indicates a document could not be fetched.
	ErrFetch = errors.New("fetch error")

	// ErrReference indicates a $ref could not be turned into a reference.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a reference chain revisits itself.
	ErrCircularReference = errors.New("circular reference")

	// ErrPathTraversal indicates a file reference escaped its base directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrParse indicates the input could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ResolutionError reports a JSON pointer that does not match its document.
type ResolutionError struct {
	// Pointer is the full pointer (fragment) being resolved
	Pointer string
	// Segment is the decoded token that failed
	Segment string
	// Index is the position of Segment in the pointer, -1 if not applicable
	Index int
	// Message describes the failure
	Message string
}

// Error returns a human-readable error message.
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("unresolvable JSON pointer %q", e.Pointer)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at segment %d (%q)", e.Index, e.Segment)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// FetchError reports a failure to retrieve or decode a remote document.
type FetchError struct {
	// URI is the document URI (without fragment)
	URI string
	// StatusCode is the HTTP status when the server answered with a non-200 code
	StatusCode int
	// Message provides additional context
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *FetchError) Error() string {
	msg := "fetch error"
	if e.URI != "" {
		msg += ": " + e.URI
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// ReferenceError represents a $ref that cannot be followed.
// This covers malformed reference URIs, circular chains and file
// references outside the permitted directory.
type ReferenceError struct {
	// Ref is the reference string
	Ref string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// IsPathTraversal is true if this error is due to a path traversal attempt
	IsPathTraversal bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	} else if e.IsPathTraversal {
		msg = "path traversal detected"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference or ErrPathTraversal
// when appropriate flags are set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	if target == ErrCircularReference && e.IsCircular {
		return true
	}
	if target == ErrPathTraversal && e.IsPathTraversal {
		return true
	}
	return false
}

// ParseError represents a failure to decode a document.
type ParseError struct {
	// Source identifies the input (file path, URL or a synthetic name)
	Source string
	// Offset is the byte offset of the failure, 0 if unknown
	Offset int64
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Offset > 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "ref_depth", "file_size"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
