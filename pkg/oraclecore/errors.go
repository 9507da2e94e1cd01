package oraclecore

import "fmt"

// Kind identifies a class of failure produced by the normalization and
// aggregation core. Callers branch on Kind rather than string-matching
// error text.
type Kind string

const (
	KindValidationFailure           Kind = "ValidationFailure"
	KindNoNormalizerFound           Kind = "NoNormalizerFound"
	KindEmptyInput                  Kind = "EmptyInput"
	KindInsufficientSources         Kind = "InsufficientSources"
	KindInsufficientRecentSources   Kind = "InsufficientRecentSources"
	KindSymbolMismatch              Kind = "SymbolMismatch"
	KindInvalidPriceValue           Kind = "InvalidPriceValue"
	KindUnknownMethod               Kind = "UnknownMethod"
	KindZeroTotalWeight             Kind = "ZeroTotalWeight"
	KindIngestionTimeout            Kind = "IngestionTimeout"
	KindProviderError               Kind = "ProviderError"
	KindPublishFailure              Kind = "PublishFailure"
)

// Error is the core's single error type. Every failure path in this
// package returns one, so callers can type-assert with errors.As and
// branch on Kind instead of matching strings.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewError builds an *Error for collaborators outside this package
// (ingestors, publishers, the scheduler) that need to report a failure
// using one of this package's Kind values.
func NewError(kind Kind, format string, args ...any) *Error {
	return newErr(kind, format, args...)
}

// WrapError builds an *Error wrapping cause, for collaborators outside
// this package that need to attach a Kind to an underlying error
// without losing it from the Unwrap chain.
func WrapError(kind Kind, cause error, format string, args ...any) *Error {
	return wrapErr(kind, cause, format, args...)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
