package ipt

import "errors"

// Err is the decoder library error code.
//
// The zero value OK is success; every other value is a failure and
// implements the error interface so it can be returned, wrapped and
// compared with errors.Is.
type Err uint32

const (
	OK              Err = 0
	ErrInternal     Err = 1
	ErrInvalid      Err = 2
	ErrNoSync       Err = 3
	ErrBadOpc       Err = 4
	ErrBadPacket    Err = 5
	ErrBadContext   Err = 6
	ErrEOS          Err = 7
	ErrBadQuery     Err = 8
	ErrNoMem        Err = 9
	ErrBadConfig    Err = 10
	ErrNoIP         Err = 11
	ErrIPSuppressed Err = 12
	ErrNoMap        Err = 13
	ErrBadInsn      Err = 14
	ErrNoTime       Err = 15
	ErrNoCBR        Err = 16
	ErrBadImage     Err = 17
	ErrBadLock      Err = 18
	ErrNotSupported Err = 19
	ErrLast         Err = 20
)

var errStrings = [...]string{
	OK:              "success",
	ErrInternal:     "internal error",
	ErrInvalid:      "invalid argument",
	ErrNoSync:       "decoder out of sync",
	ErrBadOpc:       "unknown opcode",
	ErrBadPacket:    "unknown packet",
	ErrBadContext:   "unexpected packet context",
	ErrEOS:          "reached end of trace stream",
	ErrBadQuery:     "trace stream does not match query",
	ErrNoMem:        "not enough memory",
	ErrBadConfig:    "bad configuration",
	ErrNoIP:         "no ip",
	ErrIPSuppressed: "ip has been suppressed",
	ErrNoMap:        "no memory mapped at this address",
	ErrBadInsn:      "unknown instruction",
	ErrNoTime:       "no timing information",
	ErrNoCBR:        "no core:bus ratio",
	ErrBadImage:     "bad image",
	ErrBadLock:      "locking error",
	ErrNotSupported: "not supported",
}

// Error returns the human readable description used in diagnostics.
func (e Err) Error() string {
	if int(e) < len(errStrings) {
		return errStrings[e]
	}
	return "bad error code"
}

// Code extracts the library error code from err.
//
// nil maps to OK. Errors that carry no code map to ErrInternal.
func Code(err error) Err {
	if err == nil {
		return OK
	}
	var e Err
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal
}
