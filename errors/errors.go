// Package errors wraps pkg/errors and adds error codes for the
// ingestion failure kinds, so callers can match on the kind of a
// failure without string comparison.
package errors

import (
	"github.com/pkg/errors"
)

// Code is an error code which can be checked against a given error
// with Is(). Codes tag the failure kind; the message carries the
// offending path, pattern, directory, or field.
type Code string

// Per-file, recoverable kinds. A file hitting one of these is skipped
// and recorded; the batch continues.
const (
	NotAFitsFile             Code = "NotAFitsFile"
	ContainerDecodeFailure   Code = "ContainerDecodeFailure"
	MissingHeaderField       Code = "MissingHeaderField"
	MissingImageHDU          Code = "MissingImageHDU"
	UnsupportedImageEncoding Code = "UnsupportedImageEncoding"
	InvalidUtf8Path          Code = "InvalidUtf8Path"
)

// Batch-fatal kinds. These abort the whole operation; no partial
// table is returned.
const (
	TableConstructionFailure Code = "TableConstructionFailure"
	DirectoryNotFound        Code = "DirectoryNotFound"
	FileNotFound             Code = "FileNotFound"
	NoFilesMatched           Code = "NoFilesMatched"
	AllFilesFailed           Code = "AllFilesFailed"
	InvalidExperimentType    Code = "InvalidExperimentType"
)

const Uncoded Code = "Uncoded"

func New(code Code, message string) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
	})
}

func Newf(code Code, format string, args ...interface{}) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: errors.Errorf(format, args...).Error(),
	})
}

// WrapCode attaches a code to an existing error, keeping the cause
// chain intact for Cause().
func WrapCode(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
		cause:   err,
	})
}

func Cause(err error) error {
	return errors.Cause(err)
}

func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Is reports whether err carries the given code anywhere in its
// chain. Uncoded errors only match the Uncoded code.
func Is(err error, target Code) bool {
	match := codedError{
		Code: target,
	}
	if errors.Is(err, match) {
		return true
	}
	return target == Uncoded && err != nil && !isCoded(err)
}

// CodeOf returns the code of the outermost coded error in the chain,
// or Uncoded when none is present.
func CodeOf(err error) Code {
	var ce codedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return Uncoded
}

func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func WithStack(err error) error {
	return errors.WithStack(err)
}

func isCoded(err error) bool {
	var ce codedError
	return errors.As(err, &ce)
}

// codedError is the fundamental type used by this package to provide
// coded errors.
type codedError struct {
	Code    Code
	Message string
	cause   error
}

func (ce codedError) Error() string {
	if ce.cause != nil {
		return ce.Message + ": " + ce.cause.Error()
	}
	return ce.Message
}

func (ce codedError) Is(err error) bool {
	if e, ok := err.(codedError); ok && ce.Code == e.Code {
		return true
	}
	return false
}

func (ce codedError) Unwrap() error {
	return ce.cause
}
