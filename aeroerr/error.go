package aeroerr

import (
	"errors"
	"fmt"
	"runtime"
)

// Error extends the standard error interface with a CodeError
// classification, the call site that raised it, and an optional parent
// error chain.
type Error interface {
	error

	// Code returns this error's classification.
	Code() CodeError
	// Is reports whether code matches this error's own code (not a parent's).
	Is(code CodeError) bool
	// HasCode reports whether this error or any parent carries code.
	HasCode(code CodeError) bool

	// Parent returns the wrapped cause, if any.
	Parent() error
	// Unwrap supports errors.Is/errors.As over the parent chain.
	Unwrap() error

	// Site returns "file:line" of the call that constructed this error.
	Site() string
}

type aeroError struct {
	code    CodeError
	message string
	parent  error
	file    string
	line    int
}

// New builds an Error with code's default message and no parent.
func New(code CodeError) Error {
	return newAt(code, code.defaultMessage(), nil, 2)
}

// Newf builds an Error with a custom message and no parent.
func Newf(code CodeError, format string, args ...interface{}) Error {
	return newAt(code, fmt.Sprintf(format, args...), nil, 2)
}

// Wrap builds an Error with code's default message and parent as the
// wrapped cause. Returns nil if parent is nil.
func Wrap(code CodeError, parent error) Error {
	if parent == nil {
		return nil
	}
	return newAt(code, code.defaultMessage(), parent, 2)
}

// Wrapf builds an Error with a custom message and parent as the wrapped
// cause. Returns nil if parent is nil.
func Wrapf(code CodeError, parent error, format string, args ...interface{}) Error {
	if parent == nil {
		return nil
	}
	return newAt(code, fmt.Sprintf(format, args...), parent, 2)
}

func newAt(code CodeError, message string, parent error, skip int) Error {
	file, line := callSite(skip + 1)
	return &aeroError{code: code, message: message, parent: parent, file: file, line: line}
}

func callSite(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", 0
	}
	return file, line
}

func (e *aeroError) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s", e.message, e.parent.Error())
	}
	return e.message
}

func (e *aeroError) Code() CodeError { return e.code }

func (e *aeroError) Is(code CodeError) bool { return e.code == code }

func (e *aeroError) HasCode(code CodeError) bool {
	if e.code == code {
		return true
	}
	var next Error
	if errors.As(e.parent, &next) {
		return next.HasCode(code)
	}
	return false
}

func (e *aeroError) Parent() error { return e.parent }

func (e *aeroError) Unwrap() error { return e.parent }

func (e *aeroError) Site() string { return fmt.Sprintf("%s:%d", e.file, e.line) }

// Of reports whether err carries an aeroerr.Error with the given code,
// anywhere in its wrapped chain.
func Of(err error, code CodeError) bool {
	var e Error
	if errors.As(err, &e) {
		return e.HasCode(code)
	}
	return false
}

// CodeOf returns the CodeError of err if it is (or wraps) an Error, and
// Unknown otherwise.
func CodeOf(err error) CodeError {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return Unknown
}
