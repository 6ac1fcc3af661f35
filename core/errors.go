package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the engine.
type ErrorKind string

// Error kinds, stable across every output surface.
const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindSpeciesNotFound  ErrorKind = "species_not_found"
	KindLakeNotFound     ErrorKind = "lake_not_found"
	KindPredictionFailed ErrorKind = "prediction_failed"
	KindUnknown          ErrorKind = "unknown"
)

// Error is a classified engine failure.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// Sentinels for errors.Is matching on kind.
var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrSpeciesNotFound  = &Error{Kind: KindSpeciesNotFound}
	ErrLakeNotFound     = &Error{Kind: KindLakeNotFound}
	ErrPredictionFailed = &Error{Kind: KindPredictionFailed}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}
