package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a CalcError.
type ErrorKind string

// Error kinds. Every failure of the expression pipeline carries exactly one.
const (
	KindInvalidCharacter      ErrorKind = "InvalidCharacter"
	KindMismatchedParentheses ErrorKind = "MismatchedParentheses"
	KindInsufficientOperands  ErrorKind = "InsufficientOperands"
	KindEmptyOperandForUnary  ErrorKind = "EmptyOperandForUnary"
	KindDivisionByZero        ErrorKind = "DivisionByZero"
	KindMalformedExpression   ErrorKind = "MalformedExpression"
	KindInputNotFound         ErrorKind = "InputNotFound"
)

// CalcError is a classified rpncalc error.
type CalcError struct {
	Kind    ErrorKind
	Message string
	Pos     int // byte offset in the expression, or -1
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s: %s (position %d)", e.Kind, e.Message, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf returns the kind of the first CalcError in err's chain, or "" if
// there is none.
func KindOf(err error) ErrorKind {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsKind returns true if err's chain contains a CalcError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Common error constructors.

// NewInvalidCharacterError reports a character outside the expression alphabet.
func NewInvalidCharacterError(ch string, pos int) *CalcError {
	return &CalcError{Kind: KindInvalidCharacter, Message: fmt.Sprintf("invalid character %q", ch), Pos: pos}
}

// NewMismatchedParenthesesError reports an unmatched "(" or ")".
func NewMismatchedParenthesesError(msg string, pos int) *CalcError {
	return &CalcError{Kind: KindMismatchedParentheses, Message: msg, Pos: pos}
}

// NewInsufficientOperandsError reports a binary operator with fewer than two values.
func NewInsufficientOperandsError(op string) *CalcError {
	return &CalcError{Kind: KindInsufficientOperands, Message: fmt.Sprintf("not enough operands for %s", op), Pos: -1}
}

// NewEmptyOperandForUnaryError reports a unary minus applied to an empty stack.
func NewEmptyOperandForUnaryError() *CalcError {
	return &CalcError{Kind: KindEmptyOperandForUnary, Message: "unary minus with empty stack", Pos: -1}
}

// NewDivisionByZeroError creates a DivisionByZero error.
func NewDivisionByZeroError(msg string) *CalcError {
	return &CalcError{Kind: KindDivisionByZero, Message: msg, Pos: -1}
}

// NewMalformedExpressionError reports a token stream that does not reduce to one value.
func NewMalformedExpressionError(msg string) *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: msg, Pos: -1}
}

// NewInputNotFoundError reports a missing input file.
func NewInputNotFoundError(path string) *CalcError {
	return &CalcError{Kind: KindInputNotFound, Message: fmt.Sprintf("%s not found", path), Pos: -1}
}
