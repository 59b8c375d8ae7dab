package ast

import (
	"errors"
	"fmt"
)

// The three error kinds form a closed set. Syntax and type errors are the
// two user-visible verdicts; internal errors mark invariant violations in
// the serializer or rewriter and are never conflated with the other two.

// SyntaxError reports input that does not match the call-chain grammar.
type SyntaxError struct {
	Message string
}

// NewSyntaxError creates a SyntaxError with a formatted message.
func NewSyntaxError(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Message
}

// TypeError reports grammatical input that violates the type system.
type TypeError struct {
	Message string
}

// NewTypeError creates a TypeError with a formatted message.
func NewTypeError(format string, args ...interface{}) *TypeError {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return "type error: " + e.Message
}

// InternalError reports a malformed chain: a postfix sequence or call
// structure that the parser can never produce but hand-built values can.
type InternalError struct {
	Message string
}

// NewInternalError creates an InternalError with a formatted message.
func NewInternalError(format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "malformed chain: " + e.Message
}

// IsSyntaxError reports whether err is (or wraps) a SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// IsTypeError reports whether err is (or wraps) a TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}

// IsInternalError reports whether err is (or wraps) an InternalError.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
