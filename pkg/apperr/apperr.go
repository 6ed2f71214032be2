// pkg/apperr/apperr.go

// Package apperr defines the tagged errors returned by every inspection query.
package apperr

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

type Kind int

const (
	Invalid Kind = iota + 1
	Missing
	UnsupportedCompression
	MalformedChunk
	Io
	Task
	Open
)

var kindNames = map[Kind]string{
	Invalid:                "Invalid",
	Missing:                "Missing",
	UnsupportedCompression: "UnsupportedCompression",
	MalformedChunk:         "MalformedChunk",
	Io:                     "Io",
	Task:                   "Task",
	Open:                   "Open",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels for errors.Is; only the kind is compared.
var (
	ErrInvalid                = &Error{Kind: Invalid}
	ErrMissing                = &Error{Kind: Missing}
	ErrUnsupportedCompression = &Error{Kind: UnsupportedCompression}
	ErrMalformedChunk         = &Error{Kind: MalformedChunk}
	ErrIo                     = &Error{Kind: Io}
	ErrTask                   = &Error{Kind: Task}
	ErrOpen                   = &Error{Kind: Open}
)

// Error is the single error type surfaced to callers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Invalid:
		return "invalid request: " + e.Msg
	case Missing:
		return "not found: " + e.Msg
	case UnsupportedCompression:
		return "unsupported compression: " + e.Msg
	case MalformedChunk:
		if e.Msg != "" {
			return "malformed chunk: " + e.Msg
		}
		return "malformed chunk"
	case Io:
		return "io error: " + e.Msg
	case Task:
		return "task error: " + e.Msg
	case Open:
		return "open error: " + e.Msg
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// MarshalJSON renders the error as {"code": kind, "message": text}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    string `json:"code"`
		Message string `json:"message,omitempty"`
	}{e.Kind.String(), e.Msg})
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Invalidf(format string, args ...interface{}) error { return newf(Invalid, format, args...) }

func Missingf(format string, args ...interface{}) error { return newf(Missing, format, args...) }

func Unsupported(scheme string) error { return &Error{Kind: UnsupportedCompression, Msg: scheme} }

func Malformed(format string, args ...interface{}) error {
	return newf(MalformedChunk, format, args...)
}

func Taskf(format string, args ...interface{}) error { return newf(Task, format, args...) }

// OpenErr wraps a viewer launch failure.
func OpenErr(err error) error {
	return &Error{Kind: Open, Msg: err.Error(), Err: errors.WithStack(err)}
}

// Wrap converts err into an Error of the given kind, keeping the cause.
// Errors that already carry a kind are returned unchanged.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	text := err.Error()
	if msg != "" {
		text = msg + ": " + text
	}
	return &Error{Kind: kind, Msg: text, Err: errors.Wrap(err, msg)}
}

// FromIO converts a filesystem error. A short read means the on-disk
// layout ends before its own header says it does.
func FromIO(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return &Error{Kind: MalformedChunk, Msg: "truncated read", Err: err}
	}
	return Wrap(Io, err, "")
}

// KindOf reports the kind carried by err, or 0 if err is untagged.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}
