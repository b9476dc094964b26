package ipt

import (
	"fmt"
	"strings"
)

// Error is a library error bound to a position in the trace stream.
//
// Code is the error the operation failed with. Reason, if not OK, is the
// underlying cause reported alongside the message; it may differ from Code,
// e.g. an invalid resolver state surfaces as ErrInternal.
type Error struct {
	Code      Err
	Reason    Err
	Offset    uint64
	HasOffset bool
	Message   string
}

func NewError(code Err, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func NewErrorAt(code Err, offset uint64, msg string) *Error {
	return &Error{Code: code, Offset: offset, HasOffset: true, Message: msg}
}

// WithReason sets the reported cause and returns e.
func (e *Error) WithReason(reason Err) *Error {
	e.Reason = reason
	return e
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.HasOffset {
		fmt.Fprintf(&sb, "%x: ", e.Offset)
	}
	if e.Message != "" {
		sb.WriteString(e.Message)
		sb.WriteString(": ")
	}
	if e.Reason != OK {
		sb.WriteString(e.Reason.Error())
	} else {
		sb.WriteString(e.Code.Error())
	}
	return sb.String()
}

// Unwrap exposes the error code to errors.Is.
func (e *Error) Unwrap() error {
	return e.Code
}
