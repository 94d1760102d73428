package classfile

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by Parse wraps exactly one of these,
// so callers can classify with errors.Is.
var (
	ErrInvalidClassFile        = errors.New("invalid class file")
	ErrUnsupportedClassVersion = errors.New("unsupported class version")
	ErrUnexpectedEndOfData     = errors.New("unexpected end of data")
	ErrConstantPool            = errors.New("constant pool error")
	ErrAttributeLengthMismatch = errors.New("attribute length mismatch")
)

// ParseError is a fatal parse failure. Offset is the reader position at
// which it was detected, or -1 when no position applies.
type ParseError struct {
	Kind   error
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newError(kind error, offset int, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func poolError(format string, args ...any) *ParseError {
	return newError(ErrConstantPool, -1, format, args...)
}
