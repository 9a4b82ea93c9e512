package protocol

import (
	"errors"
	"fmt"
)

// Error codes used by the plugin runtime itself. Handlers are free to
// declare their own codes.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeUnknownAction  = "UNKNOWN_ACTION"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeExecutionError = "EXECUTION_ERROR"
)

// Error is a structured action failure: a machine-readable code plus a
// human-readable message. Any other error returned by a handler is
// reported to the host as CodeExecutionError.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the declared code from err, falling back to
// CodeExecutionError for plain errors.
func ErrorCode(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}

	return CodeExecutionError
}
