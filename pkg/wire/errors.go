// Package wire error types.
//
// Every decoder in this module reports malformed or truncated input as a
// *ParseError. Wire bytes are untrusted, so decoders never panic on them and
// never substitute a default value for a field they could not read.
package wire

import "fmt"

// ParseError is returned when a byte sequence cannot be decoded.
//
// This occurs when the input ends before a field the format requires
// (truncated varint, script body or transaction field) or when a field holds a
// value the format does not allow.
type ParseError struct {
	Message string // Human-readable error message
	Cause   error  // Underlying decode error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Unwrap returns the underlying decode error, if any.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
