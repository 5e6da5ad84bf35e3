package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindAuth     ErrorKind = "auth"
	KindUpstream ErrorKind = "upstream"
	KindNotFound ErrorKind = "not_found"
	KindIO       ErrorKind = "io"
	KindCodec    ErrorKind = "codec"
)

var (
	ErrAuth     = &Error{Kind: KindAuth}
	ErrUpstream = &Error{Kind: KindUpstream}
	ErrNotFound = &Error{Kind: KindNotFound}
	ErrIO       = &Error{Kind: KindIO}
	ErrCodec    = &Error{Kind: KindCodec}
)

// Error is a failure of one gateway or local file operation. Two errors
// match under errors.Is when their kinds are equal, so callers can test
// against the Err* sentinels.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	default:
		return string(e.Kind) + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first domain error in the chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
