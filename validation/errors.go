package validation

import (
	"errors"
	"fmt"
)

// ErrRejected is the sentinel wrapped by every validation rejection.
// Callers can test errors.Is(err, ErrRejected) without caring which
// check fired.
var ErrRejected = errors.New("rejected by validation")

// Code classifies a validation rejection.
type Code string

const (
	// CodeCommandNotAllowed indicates the subcommand is not in the allowlist.
	CodeCommandNotAllowed Code = "COMMAND_NOT_ALLOWED"

	// CodeFlagNotPermitted indicates a blocked flag was present.
	CodeFlagNotPermitted Code = "FLAG_NOT_PERMITTED"

	// CodeInvalidCharacters indicates a token contained a reserved shell
	// metacharacter.
	CodeInvalidCharacters Code = "INVALID_CHARACTERS"

	// CodeInvalidInput indicates the caller-supplied argument value could
	// not be normalized into a string vector.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeEmptyCommand indicates no tokens remained after normalization.
	CodeEmptyCommand Code = "EMPTY_COMMAND"

	// CodeInvalidResourceName indicates a resource identifier violated the
	// platform naming rules.
	CodeInvalidResourceName Code = "INVALID_RESOURCE_NAME"

	// CodeFeatureDisabled indicates the run-image operation is disabled by
	// configuration.
	CodeFeatureDisabled Code = "FEATURE_DISABLED"

	// CodeImageNotAllowed indicates the image is not in the allowlist.
	CodeImageNotAllowed Code = "IMAGE_NOT_ALLOWED"
)

// Error is a structured validation rejection. It always describes a
// caller-input problem, never a system failure, and is returned to the
// caller as data rather than propagated as a fault.
type Error struct {
	// Code classifies the rejection.
	Code Code

	// Message is the caller-safe description.
	Message string
}

// Error returns the rejection message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the rejection sentinel.
func (e *Error) Unwrap() error {
	return ErrRejected
}

// reject builds a structured rejection.
func reject(code Code, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the rejection code from an error, or "" if the error is
// not a validation rejection.
func CodeOf(err error) Code {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ""
}
