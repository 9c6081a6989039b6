package signer

import "fmt"

// InputError is returned when an input cannot be signed or checked.
//
// This occurs when the input index is out of range, the previous output is
// not a P2PKH script, the key does not match the locked hash, or an existing
// scriptSig does not have the <sig> <pubkey> shape.
type InputError struct {
	InputIndex int    // Index of the input that caused the error
	Message    string // Human-readable error message
	Cause      error  // Underlying error (if any)
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("input %d: %s: %v", e.InputIndex, e.Message, e.Cause)
	}
	return fmt.Sprintf("input %d: %s", e.InputIndex, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *InputError) Unwrap() error {
	return e.Cause
}
